package course

import (
	"bufio"
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"github.com/heartmarshall/babble-backend/internal/lemma"
)

type lemmatizer interface {
	Normalize(ctx context.Context, lang, text string, opts lemma.Options) ([]string, error)
}

// WordCount is one course entry.
type WordCount struct {
	Word  string
	Count int
}

// CountLemmas lemmatizes every line and returns lemma frequencies, most
// frequent first and alphabetical among equals. Proper nouns are skipped.
func CountLemmas(ctx context.Context, n lemmatizer, lang string, lines []string) ([]WordCount, error) {
	counts := make(map[string]int)
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lemmas, err := n.Normalize(ctx, lang, line, lemma.Options{SkipProperNouns: true})
		if err != nil {
			return nil, fmt.Errorf("lemmatize %q: %w", line, err)
		}
		for _, l := range lemmas {
			counts[l]++
		}
	}

	out := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, WordCount{Word: w, Count: c})
	}
	slices.SortFunc(out, func(a, b WordCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Word, b.Word)
	})
	return out, nil
}

// WriteCourse writes counts as a course file: a JSON object whose key order is
// the introduction order.
func WriteCourse(w io.Writer, counts []WordCount) error {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, wc := range counts {
		if i > 0 {
			buf.WriteString(",")
		}
		key, err := json.Marshal(wc.Word)
		if err != nil {
			return fmt.Errorf("encode %q: %w", wc.Word, err)
		}
		fmt.Fprintf(&buf, "\n    %s: %d", key, wc.Count)
	}
	if len(counts) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// TextLines returns the non-empty lines of r.
func TextLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	return lines, nil
}

// SubtitleLines extracts the spoken text of an SRT file: the lines following
// each timestamp up to the next blank line, with markup such as <i> removed.
func SubtitleLines(r io.Reader) ([]string, error) {
	var lines []string
	inCue := false
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		switch {
		case !inCue && strings.Contains(line, "-->"):
			inCue = true
		case inCue && line == "":
			inCue = false
		case inCue:
			if text := stripMarkup(line); text != "" {
				lines = append(lines, text)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read subtitles: %w", err)
	}
	return lines, nil
}

func stripMarkup(s string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}
