package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
)

// TranslateToolName is the structured-output tool used for word lookups.
const TranslateToolName = "record_translations"

const translatePrompt = `Give the common dictionary translations of the word %q from language %q into language %q.
List the most frequent meaning first, one or two words per entry, at most %d entries.
If the word has no translation, record an empty list.`

const maxTranslations = 8

// Translate returns dictionary translations of word from source into target
// language codes. A word with no translation yields an empty list.
func (p *Provider) Translate(ctx context.Context, word, source, target string) ([]string, error) {
	raw, err := p.ask(ctx, fmt.Sprintf(translatePrompt, word, source, target, maxTranslations), translationsTool())
	if err != nil {
		return nil, err
	}

	translations, err := parseTranslations(raw)
	if err != nil {
		return nil, fmt.Errorf("claude: translations for %q: %w", word, err)
	}
	if len(translations) > maxTranslations {
		translations = translations[:maxTranslations]
	}
	return translations, nil
}

// parseTranslations accepts the tool payload {"translations": [...]} or a
// bare JSON array from a text answer.
func parseTranslations(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)

	var list []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return list, nil
	}

	var payload struct {
		Translations []string `json:"translations"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if payload.Translations == nil {
		return []string{}, nil
	}
	return payload.Translations, nil
}

// translationsTool describes {translations: [string]}.
func translationsTool() *anthropic.ToolParam {
	return &anthropic.ToolParam{
		Name:        TranslateToolName,
		Description: anthropic.String("Record the translations of the word."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: map[string]any{
				"translations": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			Required: []string{"translations"},
		},
	}
}
