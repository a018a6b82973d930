package domain

import "time"

// ChatRole identifies who wrote a chat message
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry of the follow-up conversation
type ChatMessage struct {
	Role      ChatRole
	Content   string
	Timestamp time.Time
}
