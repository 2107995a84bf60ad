package claude

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ToolName is the structured-output tool offered to the model.
const ToolName = "record_sentences"

const defaultMaxTokens = 4096

// Config holds generator settings.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Provider generates exercise sentences with Claude.
type Provider struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	log       *slog.Logger
}

// NewProvider creates a Provider. BaseURL is optional and used by tests.
func NewProvider(cfg Config, logger *slog.Logger, opts ...option.RequestOption) *Provider {
	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(cfg.Timeout))
	}
	reqOpts = append(reqOpts, opts...)

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Provider{
		client:    anthropic.NewClient(reqOpts...),
		model:     cfg.Model,
		maxTokens: int64(maxTokens),
		log:       logger.With("adapter", "claude"),
	}
}

// Generate sends prompt and returns the raw structured payload. When the
// model answers through the tool, the tool input JSON is returned;
// otherwise the concatenated text content is.
func (p *Provider) Generate(ctx context.Context, prompt string, languages []string) (string, error) {
	return p.ask(ctx, prompt, sentencesTool(languages))
}

func (p *Provider) ask(ctx context.Context, prompt string, tool *anthropic.ToolParam) (string, error) {
	start := time.Now()

	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Tools: []anthropic.ToolUnionParam{
			{OfTool: tool},
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude: messages call: %w", err)
	}

	p.log.DebugContext(ctx, "claude response",
		slog.String("tool", tool.Name),
		slog.String("stop_reason", string(msg.StopReason)),
		slog.Int("blocks", len(msg.Content)),
		slog.Duration("took", time.Since(start)),
	)

	var text strings.Builder
	for _, block := range msg.Content {
		switch block.Type {
		case "tool_use":
			if block.Name == tool.Name && len(block.Input) > 0 {
				return string(block.Input), nil
			}
		case "text":
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("claude: empty response")
	}
	return text.String(), nil
}

// sentencesTool describes {sentences: [{<lang>: string, ...}]}.
func sentencesTool(languages []string) *anthropic.ToolParam {
	fields := make(map[string]any, len(languages))
	for _, lang := range languages {
		fields[lang] = map[string]any{
			"type":        "string",
			"description": "The sentence in language " + lang,
		}
	}

	return &anthropic.ToolParam{
		Name:        ToolName,
		Description: anthropic.String("Record the generated sentences with one translation per language."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: map[string]any{
				"sentences": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":       "object",
						"properties": fields,
						"required":   languages,
					},
				},
			},
			Required: []string{"sentences"},
		},
	}
}
