package tagger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/babble-backend/internal/domain"
	"github.com/heartmarshall/babble-backend/internal/lemma"
)

// Provider calls an external part-of-speech tagging service over HTTP.
//
// Protocol: POST {baseURL}/tag with {"lang","text"}; the service answers
// {"tokens":[{"text","lemma","pos","is_alpha"}]}. A 404 means the service has
// no model for the language.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewProvider creates a Provider for the tagging service at baseURL.
func NewProvider(baseURL string, timeout time.Duration, logger *slog.Logger) *Provider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Provider{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "tagger"),
	}
}

// Tag tokenizes and tags text in lang.
func (p *Provider) Tag(ctx context.Context, lang, text string) ([]lemma.Token, error) {
	payload, err := json.Marshal(tagRequest{Lang: lang, Text: text})
	if err != nil {
		return nil, fmt.Errorf("tagger: encode request: %w", err)
	}

	p.log.DebugContext(ctx, "tagger request", slog.String("lang", lang), slog.Int("len", len(text)))

	resp, err := p.doWithRetry(ctx, payload, lang)
	if err != nil {
		p.log.ErrorContext(ctx, "tagger request failed", slog.String("lang", lang), slog.String("error", err.Error()))
		return nil, fmt.Errorf("tagger: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("tagger: no model for %q: %w", lang, domain.ErrModelUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tagger: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tagger: read body: %w", err)
	}

	var decoded tagResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("tagger: decode json: %w", err)
	}

	tokens := make([]lemma.Token, len(decoded.Tokens))
	for i, t := range decoded.Tokens {
		tokens[i] = lemma.Token{
			Text:    t.Text,
			Lemma:   t.Lemma,
			POS:     domain.PartOfSpeech(t.POS),
			IsAlpha: t.IsAlpha,
		}
	}
	return tokens, nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (p *Provider) doWithRetry(ctx context.Context, payload []byte, lang string) (*http.Response, error) {
	resp, err := p.do(ctx, payload)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}

	if ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	p.log.WarnContext(ctx, "tagger retry", slog.String("lang", lang), slog.String("reason", reason))

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(500 * time.Millisecond):
	}

	return p.do(ctx, payload)
}

func (p *Provider) do(ctx context.Context, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/tag", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return p.httpClient.Do(req)
}
