package chat

import (
	"context"

	"github.com/Rion4/FedGrid-AIINNOVATION/pkg/anthropic"
	"github.com/Rion4/FedGrid-AIINNOVATION/pkg/gemini"
)

// Gemini adapts a gemini.Client. The transcript is sent as-is, welcome
// turn included.
type Gemini struct {
	Client gemini.Client
}

// Name implements Backend.
func (Gemini) Name() string { return "gemini" }

// Generate implements Backend.
func (g Gemini) Generate(ctx context.Context, system string, turns []Turn) (string, error) {
	req := gemini.Request{Contents: make([]gemini.Content, len(turns))}
	for i, t := range turns {
		req.Contents[i] = gemini.Content{Role: string(t.Role), Parts: []gemini.Part{{Text: t.Text}}}
	}
	if system != "" {
		req.SystemInstruction = &gemini.Content{Parts: []gemini.Part{{Text: system}}}
	}

	resp, err := g.Client.GenerateContent(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Anthropic adapts an anthropic.Client; model turns become assistant turns.
type Anthropic struct {
	Client anthropic.Client
}

// Name implements Backend.
func (Anthropic) Name() string { return "anthropic" }

// Generate implements Backend.
func (a Anthropic) Generate(ctx context.Context, system string, turns []Turn) (string, error) {
	msgs := make([]anthropic.Message, len(turns))
	for i, t := range turns {
		role := anthropic.RoleUser
		if t.Role == RoleModel {
			role = anthropic.RoleAssistant
		}
		msgs[i] = anthropic.Message{Role: role, Content: t.Text}
	}

	reply, err := a.Client.Generate(ctx, system, msgs)
	if err != nil {
		return "", err
	}
	return reply.Text, nil
}
