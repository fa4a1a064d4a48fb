package realtime

// Event kinds carried on the bus.
const (
	EventChatMessage       = "chat.message"
	EventXPAwarded         = "xp.awarded"
	EventSubmissionCreated = "submission.created"
)

// Message is the envelope published on the realtime bus. Data stays loosely
// typed; consumers pick out what they need.
type Message struct {
	Channel string                 `json:"channel"`
	Event   string                 `json:"event"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
