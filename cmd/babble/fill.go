package main

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/babble-backend/internal/app"
	"github.com/heartmarshall/babble-backend/internal/domain"
	"github.com/heartmarshall/babble-backend/internal/service/corpus"
)

func (c *cli) fillCmd() *cobra.Command {
	var (
		lang     string
		words    []string
		required []string
		count    int
	)
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Generate corpus sentences for a vocabulary once",
		Long: `Runs one generation pass: asks the generator for COUNT sentences using the
given words, lemmatizes them and stores the new ones in the corpus. Stored
sentences are printed as JSON lines.`,
		Example: `  babble fill --lang es --words yo,tener,agua,casa --require agua --count 10`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := c.setup()
			if err != nil {
				return err
			}
			comp, err := app.Build(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer comp.Close()

			inserted, err := comp.Services.Corpus.Fill(cmd.Context(), corpus.FillRequest{
				BaseLanguage:  lang,
				Dictionary:    domain.NewWordSet(trimAll(words)...),
				RequiredWords: trimAll(required),
				Count:         count,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(c.stdout)
			for _, s := range inserted {
				if err := enc.Encode(sentenceLine{ID: s.ID.String(), Text: s.Text, Lemmas: s.Lemmas}); err != nil {
					return err
				}
			}
			logger.Info("fill finished", slog.String("lang", lang), slog.Int("inserted", len(inserted)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "es", "Base language code")
	cmd.Flags().StringSliceVarP(&words, "words", "w", nil, "Vocabulary the sentences may use")
	cmd.Flags().StringSliceVarP(&required, "require", "r", nil, "Words of which each sentence must use at least one")
	cmd.Flags().IntVarP(&count, "count", "n", 10, "Sentences to request")
	_ = cmd.MarkFlagRequired("words")
	return cmd
}

type sentenceLine struct {
	ID     string              `json:"id"`
	Text   map[string]string   `json:"text"`
	Lemmas map[string][]string `json:"lemmas"`
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
