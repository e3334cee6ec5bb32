// Package llm wraps the OpenAI chat completion API behind a small interface
// shared by the answer drafter and the background summary generator.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/FranksOps/rankrocket/internal/metrics"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultModel matches the model the toolkit has always drafted with.
const DefaultModel = "gpt-4"

// DefaultTemperature keeps answers conversational without drifting.
const DefaultTemperature = 0.7

var (
	// ErrMissingAPIKey is returned when no OpenAI key is configured.
	ErrMissingAPIKey = errors.New("llm: missing API key")
	// ErrEmptyCompletion is returned when the model sends back no choices.
	ErrEmptyCompletion = errors.New("llm: empty completion")
)

// Prompt is a single-turn chat request.
type Prompt struct {
	// Purpose labels metrics and logs, e.g. "faq_answer".
	Purpose string
	System  string
	User    string
}

// Completer produces a completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// Config configures the OpenAI client.
type Config struct {
	APIKey      string
	BaseURL     string // optional, for proxies and compatible endpoints
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	// EstimateTokens logs a prompt token estimate before each call. The
	// tokenizer data is fetched on first use, so this is off by default.
	EstimateTokens bool
	Metrics        *metrics.Recorder
}

// OpenAI implements Completer with the official SDK.
type OpenAI struct {
	client openai.Client
	cfg    Config
	logger *slog.Logger
}

var _ Completer = (*OpenAI)(nil)

// NewOpenAI creates a client. The caller owns its lifecycle; there is no
// package-level client.
func NewOpenAI(cfg Config, logger *slog.Logger) (*OpenAI, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
		// retries are the caller's decision
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		cfg:    cfg,
		logger: logger.With("component", "openai", "model", cfg.Model),
	}, nil
}

// Complete sends the prompt and returns the trimmed text of the first choice.
func (o *OpenAI) Complete(ctx context.Context, p Prompt) (string, error) {
	purpose := p.Purpose
	if purpose == "" {
		purpose = "completion"
	}

	if o.cfg.EstimateTokens {
		if n, err := EstimateTokens(o.cfg.Model, p); err != nil {
			o.logger.Debug("token estimate unavailable", "err", err)
		} else {
			o.logger.Debug("prompt token estimate", "purpose", purpose, "tokens", n)
		}
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if p.System != "" {
		messages = append(messages, openai.SystemMessage(p.System))
	}
	messages = append(messages, openai.UserMessage(p.User))

	req := openai.ChatCompletionNewParams{
		Model:       o.cfg.Model,
		Messages:    messages,
		Temperature: openai.Float(o.cfg.Temperature),
	}
	if o.cfg.MaxTokens > 0 {
		req.MaxCompletionTokens = openai.Int(int64(o.cfg.MaxTokens))
	}

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, req)
	if err != nil {
		o.cfg.Metrics.RecordCompletion(purpose, metrics.OutcomeFailed, time.Since(start))
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		o.cfg.Metrics.RecordCompletion(purpose, metrics.OutcomeEmpty, time.Since(start))
		return "", ErrEmptyCompletion
	}

	o.cfg.Metrics.RecordCompletion(purpose, metrics.OutcomeOK, time.Since(start))
	o.logger.Debug("chat completion finished",
		"purpose", purpose,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"duration", time.Since(start),
	)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
