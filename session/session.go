// Package session implements the live interview call controller: the
// call-status state machine, the voice-event adapter that feeds it, the
// capability probe that decides between a live and a simulated call, and
// the simulator used when live audio is unavailable.
package session

// CallStatus is the lifecycle state of one interview call.
type CallStatus string

const (
	StatusInactive   CallStatus = "INACTIVE"
	StatusConnecting CallStatus = "CONNECTING"
	StatusActive     CallStatus = "ACTIVE"
	StatusFinished   CallStatus = "FINISHED"
	StatusError      CallStatus = "ERROR"
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
)

// Message is a single final transcript entry. The machine owns the ordered,
// append-only message sequence for the lifetime of the session.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Mode selects what a session is for: generating interview questions or
// running a prepared interview.
type Mode string

const (
	ModeGenerate  Mode = "generate"
	ModeInterview Mode = "interview"
)

// Context carries the construction-time parameters of one session. It is
// immutable for the session's lifetime; the machine only reads it.
type Context struct {
	UserName    string
	UserID      string
	InterviewID string
	FeedbackID  string
	Mode        Mode
	Questions   []string
}
