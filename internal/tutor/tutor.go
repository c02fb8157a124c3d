// Package tutor implements the AI chat tutor and its free-tier quota.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/examina/internal/llm"
)

// HistoryWindow is how many recent messages are sent to the model.
const HistoryWindow = 10

// ErrLimitReached means a free user has used today's messages.
var ErrLimitReached = errors.New("free message limit reached")

// ErrNotConfigured means no LLM provider is available.
var ErrNotConfigured = errors.New("AI tutor is not configured")

// Message is one chat turn.
type Message struct {
	Role    llm.Role `json:"role"`
	Content string   `json:"content"`
}

// Reply is the tutor's answer plus the quota left afterwards. Remaining is
// -1 for unlimited users.
type Reply struct {
	Message   string `json:"message"`
	Remaining int    `json:"remaining"`
}

// Service sends chat turns to the provider and meters free usage.
type Service struct {
	provider llm.Provider
	usage    *UsageStore
	limit    int
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLimit overrides FreeMessageLimit.
func WithLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService returns a tutor backed by provider. A nil provider makes every
// Send fail with ErrNotConfigured.
func NewService(provider llm.Provider, usage *UsageStore, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		usage:    usage,
		limit:    FreeMessageLimit,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Limit returns the daily free message limit.
func (s *Service) Limit() int {
	return s.limit
}

// Configured reports whether a provider is set.
func (s *Service) Configured() bool {
	return s.provider != nil
}

// Remaining returns today's free messages left, or -1 when premium.
func (s *Service) Remaining(ctx context.Context, premium bool) (int, error) {
	if premium {
		return -1, nil
	}
	u, err := s.usage.Load(ctx, s.now())
	if err != nil {
		return 0, err
	}
	return u.Remaining(s.limit), nil
}

// Send asks the tutor about text given the earlier conversation. A free
// user's message is counted before the provider is called. When the
// provider fails, the reply holds ApologyMessage and err is non-nil; the
// message still counts towards the quota.
func (s *Service) Send(ctx context.Context, history []Message, text string, premium bool) (Reply, error) {
	if s.provider == nil {
		return Reply{}, ErrNotConfigured
	}
	now := s.now()

	out := Reply{Remaining: -1}
	if !premium {
		before, err := s.usage.Load(ctx, now)
		if err != nil {
			return Reply{}, fmt.Errorf("load tutor usage: %w", err)
		}
		u, ok, err := s.usage.Reserve(ctx, now, s.limit)
		if err != nil {
			return Reply{Message: ApologyMessage, Remaining: before.Remaining(s.limit)},
				fmt.Errorf("record tutor usage: %w", err)
		}
		if !ok {
			return Reply{Remaining: 0}, ErrLimitReached
		}
		out.Remaining = u.Remaining(s.limit)
	}

	msgs := append(append([]Message(nil), history...), Message{Role: llm.RoleUser, Content: text})
	reply, err := s.complete(ctx, msgs)
	out.Message = reply

	if premium {
		if _, uerr := s.usage.Increment(ctx, now); uerr != nil {
			err = errors.Join(err, fmt.Errorf("record tutor usage: %w", uerr))
		}
	}
	return out, err
}

func (s *Service) complete(ctx context.Context, msgs []Message) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeTutor)
	resp, err := s.provider.Generate(ctx, llm.PurposeTutor.NewRequest(SystemPrompt, window(msgs)...))
	if err != nil {
		return ApologyMessage, fmt.Errorf("tutor: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "Sorry, I could not generate a response. Please try again.", nil
	}
	return text, nil
}

// window converts the last HistoryWindow messages for the provider.
func window(msgs []Message) []llm.Message {
	if len(msgs) > HistoryWindow {
		msgs = msgs[len(msgs)-HistoryWindow:]
	}
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		role := m.Role
		if role != llm.RoleAssistant {
			role = llm.RoleUser
		}
		out = append(out, llm.Message{Role: role, Content: m.Content})
	}
	return out
}
