package ports

import "context"

// FollowupRequest is a question about previous compliance results
type FollowupRequest struct {
	Question   string `json:"question"`
	Regulation string `json:"regulation,omitempty"`
}

// FollowupService answers follow-up questions through the remote conversational endpoint
type FollowupService interface {
	Ask(ctx context.Context, req FollowupRequest) (string, error)
}
