package services

import "math"

// Level is a pure function of total XP. The curve is quadratic: each level
// requires 100*(n-1)^2 total XP, so level 2 lands at 100 XP and level 5 at
// 1600.
func Level(totalXP int) int {
	if totalXP <= 0 {
		return 1
	}
	return 1 + int(math.Sqrt(float64(totalXP)/100.0))
}

// XPForLevel returns the total XP floor of a level, the inverse of Level.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	n := level - 1
	return 100 * n * n
}
