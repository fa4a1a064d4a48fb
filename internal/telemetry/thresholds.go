package telemetry

import (
	_ "embed"
	"sync"

	"gopkg.in/yaml.v3"
)

// Thresholds is the per-class anti-gaming policy. Zero fields fall back to
// the defaults from the embedded policy file, so a partially configured class
// still classifies sensibly.
type Thresholds struct {
	FlagPasteCount       int `yaml:"flag_paste_count" json:"flag_paste_count"`
	FlagMinEngagement    int `yaml:"flag_min_engagement" json:"flag_min_engagement"`
	SupportKeystrokes    int `yaml:"support_keystrokes" json:"support_keystrokes"`
	SupportMinEngagement int `yaml:"support_min_engagement" json:"support_min_engagement"`
	SuccessMinKeystrokes int `yaml:"success_min_keystrokes" json:"success_min_keystrokes"`
	XPPerMinute          int `yaml:"xp_per_minute" json:"xp_per_minute"`
}

//go:embed policy.yaml
var policyYAML []byte

// Hard fallbacks in case the embedded policy file is ever malformed.
var fallbackThresholds = Thresholds{
	FlagPasteCount:       5,
	FlagMinEngagement:    120,
	SupportKeystrokes:    20,
	SupportMinEngagement: 300,
	SuccessMinKeystrokes: 200,
	XPPerMinute:          10,
}

var (
	defaultsOnce sync.Once
	defaults     Thresholds
)

// DefaultThresholds returns the baseline policy shipped with the binary.
func DefaultThresholds() Thresholds {
	defaultsOnce.Do(func() {
		var parsed Thresholds
		if err := yaml.Unmarshal(policyYAML, &parsed); err == nil {
			defaults = parsed.fillFrom(fallbackThresholds)
		} else {
			defaults = fallbackThresholds
		}
	})
	return defaults
}

// WithDefaults returns a copy with every unset field filled from the baseline
// policy.
func (t Thresholds) WithDefaults() Thresholds {
	return t.fillFrom(DefaultThresholds())
}

func (t Thresholds) fillFrom(d Thresholds) Thresholds {
	if t.FlagPasteCount <= 0 {
		t.FlagPasteCount = d.FlagPasteCount
	}
	if t.FlagMinEngagement <= 0 {
		t.FlagMinEngagement = d.FlagMinEngagement
	}
	if t.SupportKeystrokes <= 0 {
		t.SupportKeystrokes = d.SupportKeystrokes
	}
	if t.SupportMinEngagement <= 0 {
		t.SupportMinEngagement = d.SupportMinEngagement
	}
	if t.SuccessMinKeystrokes <= 0 {
		t.SuccessMinKeystrokes = d.SuccessMinKeystrokes
	}
	if t.XPPerMinute <= 0 {
		t.XPPerMinute = d.XPPerMinute
	}
	return t
}
