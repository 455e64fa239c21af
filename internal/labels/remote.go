package labels

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.6
	defaultTimeout     = 15 * time.Second
)

const systemInstruction = "You expand ideas into concise mindmap child nodes. " +
	"Return ONLY a JSON array of short strings (2-6 words each), 5 to 8 items. " +
	"No extra keys, no explanations."

type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Remote asks an OpenAI-compatible chat completion API for labels.
type Remote struct {
	client      chatClient
	model       string
	temperature float32
	timeout     time.Duration
}

type RemoteOptions struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

func NewRemote(opts RemoteOptions) *Remote {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	return newRemoteWithClient(openai.NewClientWithConfig(cfg), opts.Model, opts.Timeout)
}

func newRemoteWithClient(client chatClient, model string, timeout time.Duration) *Remote {
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Remote{
		client:      client,
		model:       model,
		temperature: DefaultTemperature,
		timeout:     timeout,
	}
}

func (r *Remote) Model() string {
	return r.model
}

// Labels sends one chat completion request bounded by the remote timeout and
// decodes the reply with DecodeLabels.
func (r *Remote) Labels(ctx context.Context, seed string, depth int) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(seed, depth)},
		},
		Temperature: r.temperature,
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, r.timeout)
		}
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}
	return DecodeLabels(resp.Choices[0].Message.Content)
}

func userPrompt(seed string, depth int) string {
	return fmt.Sprintf("Parent node: %s\nDepth: %d\nGenerate child nodes that expand this idea.", seed, depth)
}
