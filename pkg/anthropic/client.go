// Package anthropic adapts the Anthropic Messages API to the dashboard's
// chat transcript.
package anthropic

import (
	"context"
	"errors"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/resilience"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversational turn.
type Message struct {
	Role    string
	Content string
}

// Reply is the generated answer.
type Reply struct {
	ID         string
	Model      string
	Text       string
	StopReason string
	Usage      TokenUsage
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
}

// modelPricing holds {input, output} USD per million tokens.
var modelPricing = map[string][2]float64{
	"claude-haiku-4-5-20251001":  {1.00, 5.00},
	"claude-sonnet-4-5-20250929": {3.00, 15.00},
}

// EstimateCost returns the estimated USD cost, or 0 for unknown models.
func (u TokenUsage) EstimateCost(model string) float64 {
	p, ok := modelPricing[model]
	if !ok {
		return 0
	}
	return float64(u.InputTokens)/1e6*p[0] + float64(u.OutputTokens)/1e6*p[1]
}

// Client generates chat replies.
type Client interface {
	Generate(ctx context.Context, system string, msgs []Message) (*Reply, error)
}

// Option configures the client.
type Option func(*config)

type config struct {
	model     string
	maxTokens int64
	opts      []option.RequestOption
}

// WithModel sets the model id.
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithMaxTokens caps the reply length.
func WithMaxTokens(n int64) Option {
	return func(c *config) { c.maxTokens = n }
}

// WithBaseURL points the client at another endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *config) { c.opts = append(c.opts, option.WithBaseURL(u)) }
}

type sdkClient struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// NewClient creates an SDK-backed client. SDK retries are disabled; the
// caller owns retry policy.
func NewClient(apiKey string, opts ...Option) Client {
	cfg := config{model: "claude-haiku-4-5-20251001", maxTokens: 1024}
	for _, o := range opts {
		o(&cfg)
	}
	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, cfg.opts...)

	return &sdkClient{
		client:    sdk.NewClient(reqOpts...),
		model:     cfg.model,
		maxTokens: cfg.maxTokens,
	}
}

func (c *sdkClient) Generate(ctx context.Context, system string, msgs []Message) (*Reply, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  toSDKMessages(msgs),
	}
	if len(params.Messages) == 0 {
		return nil, eris.New("anthropic: no user message")
	}
	if system != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			return nil, &resilience.UpstreamError{Service: "anthropic", Status: apiErr.StatusCode}
		}
		return nil, eris.Wrap(err, "anthropic: create message")
	}

	reply := fromSDKMessage(msg)
	zap.L().Debug("anthropic: reply",
		zap.String("model", reply.Model),
		zap.Int64("input_tokens", reply.Usage.InputTokens),
		zap.Int64("output_tokens", reply.Usage.OutputTokens),
		zap.Float64("estimated_cost_usd", reply.Usage.EstimateCost(reply.Model)),
	)
	if strings.TrimSpace(reply.Text) == "" {
		return nil, resilience.ErrEmptyResponse
	}
	return reply, nil
}

// toSDKMessages converts turns, dropping anything before the first user
// turn since the API requires conversations to open with the user.
func toSDKMessages(msgs []Message) []sdk.MessageParam {
	out := make([]sdk.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		if len(out) == 0 && m.Role != RoleUser {
			continue
		}
		block := sdk.NewTextBlock(m.Content)
		if m.Role == RoleAssistant {
			out = append(out, sdk.NewAssistantMessage(block))
		} else {
			out = append(out, sdk.NewUserMessage(block))
		}
	}
	return out
}

func fromSDKMessage(msg *sdk.Message) *Reply {
	var text strings.Builder
	for _, b := range msg.Content {
		if b.Type == "text" {
			text.WriteString(b.Text)
		}
	}
	return &Reply{
		ID:         msg.ID,
		Model:      string(msg.Model),
		Text:       text.String(),
		StopReason: string(msg.StopReason),
		Usage: TokenUsage{
			InputTokens:  msg.Usage.InputTokens,
			OutputTokens: msg.Usage.OutputTokens,
		},
	}
}
