package application

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/devbush/compliancecheck/internal/domain"
	"github.com/devbush/compliancecheck/internal/ports"
)

const (
	chatGreeting = "Hello! I'm your compliance assistant. I can help you understand your compliance results and answer questions about the regulation they were checked against. How can I help you today?"
	chatApology  = "Sorry, I encountered an error. Please try again."
)

// ChatService keeps a follow-up conversation with the compliance assistant
type ChatService struct {
	followup   ports.FollowupService
	regulation string
	now        func() time.Time

	mu      sync.Mutex
	history []domain.ChatMessage
}

// NewChatService creates a chat session that starts with the assistant greeting
func NewChatService(followup ports.FollowupService, regulation string) *ChatService {
	s := &ChatService{
		followup:   followup,
		regulation: regulation,
		now:        time.Now,
	}
	s.history = []domain.ChatMessage{{
		Role:      domain.RoleAssistant,
		Content:   chatGreeting,
		Timestamp: s.now(),
	}}
	return s
}

// Ask sends a question and returns the assistant's answer.
// On failure an apology is added to the history and the error returned.
func (s *ChatService) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", domain.ErrEmptyQuestion
	}

	s.append(domain.RoleUser, question)

	answer, err := s.followup.Ask(ctx, ports.FollowupRequest{
		Question:   question,
		Regulation: s.regulation,
	})
	if err != nil {
		s.append(domain.RoleAssistant, chatApology)
		return "", err
	}

	s.append(domain.RoleAssistant, answer)
	return answer, nil
}

// History returns a copy of the conversation so far
func (s *ChatService) History() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

func (s *ChatService) append(role domain.ChatRole, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, domain.ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
	})
}
