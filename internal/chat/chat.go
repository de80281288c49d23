// Package chat keeps the assistant transcript and turns backend failures
// into fallback replies, so a chat request never fails outright.
package chat

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/resilience"
)

// Role is a transcript speaker.
type Role string

// Speakers.
const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Fallback replies.
const (
	FallbackEmpty      = "Sorry, I couldn't generate a response."
	FallbackConnection = "Connection error. Please try again."
)

// Turn is one transcript entry.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Transcript is the running conversation, oldest first.
type Transcript []Turn

// NewTranscript returns a transcript holding the welcome message.
func NewTranscript() Transcript {
	return Transcript{{Role: RoleModel, Text: Welcome}}
}

// Backend produces the next model turn for a conversation.
// Implementations return resilience.ErrEmptyResponse when the upstream
// answered without text.
type Backend interface {
	Name() string
	Generate(ctx context.Context, system string, turns []Turn) (string, error)
}

// Assistant sends transcripts to a backend through a guard.
type Assistant struct {
	Backend Backend
	Guard   *resilience.Guard
	System  string
}

// NewAssistant creates an assistant with the FedGrid system instruction.
// A nil guard means calls go straight to the backend.
func NewAssistant(b Backend, g *resilience.Guard) *Assistant {
	return &Assistant{Backend: b, Guard: g, System: SystemInstruction}
}

// Send appends the user's text and the model's reply to a copy of t.
// Blank input returns t unchanged.
func (a *Assistant) Send(ctx context.Context, t Transcript, text string) Transcript {
	text = strings.TrimSpace(text)
	if text == "" {
		return t
	}

	out := make(Transcript, len(t), len(t)+2)
	copy(out, t)
	out = append(out, Turn{Role: RoleUser, Text: text})

	reply, err := a.generate(ctx, out)
	switch {
	case err == nil && strings.TrimSpace(reply) != "":
	case err == nil, errors.Is(err, resilience.ErrEmptyResponse):
		zap.L().Warn("chat: empty response", zap.String("backend", a.Backend.Name()))
		reply = FallbackEmpty
	default:
		zap.L().Error("chat: backend failed", zap.String("backend", a.Backend.Name()), zap.Error(err))
		reply = FallbackConnection
	}

	return append(out, Turn{Role: RoleModel, Text: reply})
}

func (a *Assistant) generate(ctx context.Context, turns Transcript) (string, error) {
	call := func(ctx context.Context) (string, error) {
		return a.Backend.Generate(ctx, a.System, turns)
	}
	if a.Guard == nil {
		return call(ctx)
	}
	return resilience.Do(ctx, a.Guard, call)
}
