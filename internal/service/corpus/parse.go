package corpus

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/heartmarshall/babble-backend/internal/domain"
)

// ParseKind tags the shape the generator's output was found in.
type ParseKind int

const (
	Unparseable ParseKind = iota
	DirectList
	WrappedObject
)

func (k ParseKind) String() string {
	switch k {
	case DirectList:
		return "direct_list"
	case WrappedObject:
		return "wrapped_object"
	default:
		return "unparseable"
	}
}

// ParseResult is the outcome of parsing raw generator output. Items holds the
// list elements as decoded, before any per-language filtering.
type ParseResult struct {
	Kind   ParseKind
	Fenced bool
	Items  []any
}

var fencePattern = regexp.MustCompile("(?s)```(?:json)?(.*?)```")

// ParseGeneration tries, in order, a direct JSON list, a single-key object
// wrapping the list, and then both forms again on the body of the first
// markdown code fence.
func ParseGeneration(raw string) ParseResult {
	if res := parseJSON(raw); res.Kind != Unparseable {
		return res
	}
	if !strings.Contains(raw, "```") {
		return ParseResult{Kind: Unparseable}
	}
	m := fencePattern.FindStringSubmatch(raw)
	if m == nil {
		return ParseResult{Kind: Unparseable}
	}
	res := parseJSON(m[1])
	res.Fenced = res.Kind != Unparseable
	return res
}

func parseJSON(s string) ParseResult {
	var v any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &v); err != nil {
		return ParseResult{Kind: Unparseable}
	}

	switch t := v.(type) {
	case []any:
		return ParseResult{Kind: DirectList, Items: t}
	case map[string]any:
		if len(t) != 1 {
			return ParseResult{Kind: Unparseable}
		}
		for _, inner := range t {
			if list, ok := inner.([]any); ok {
				return ParseResult{Kind: WrappedObject, Items: list}
			}
		}
	}
	return ParseResult{Kind: Unparseable}
}

// sentenceTexts keeps items whose keys are exactly languages and whose values
// are non-empty strings.
func sentenceTexts(items []any, languages []string) []map[string]string {
	out := make([]map[string]string, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok || len(obj) != len(languages) {
			continue
		}

		texts := make(map[string]string, len(languages))
		for _, lang := range languages {
			str, ok := obj[lang].(string)
			text := domain.CleanSentenceText(str)
			if !ok || text == "" {
				break
			}
			texts[lang] = text
		}
		if len(texts) == len(languages) {
			out = append(out, texts)
		}
	}
	return out
}
