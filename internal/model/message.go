package model

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn of a conversation, oldest first. Messages are
// owned by the caller; the pipeline only reads them to build requests.
type ChatMessage struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// ChatRequest is the inbound request body for the story endpoint.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	Locale   string        `json:"locale,omitempty"`
}
