package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/babble-backend/internal/course"
	"github.com/heartmarshall/babble-backend/internal/lemma"
)

func (c *cli) lemmatizeCmd() *cobra.Command {
	var (
		lang      string
		skipNames bool
	)
	cmd := &cobra.Command{
		Use:   "lemmatize TEXT...",
		Short: "Print the lemmas of a sentence",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := c.setup()
			if err != nil {
				return err
			}
			lemmas, err := c.newLemmatizer(cfg, logger).Normalize(cmd.Context(), lang, strings.Join(args, " "), lemma.Options{SkipProperNouns: skipNames})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.stdout, strings.Join(lemmas, " "))
			return err
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "es", "Language code")
	cmd.Flags().BoolVar(&skipNames, "skip-proper-nouns", false, "Drop proper nouns")
	return cmd
}

func (c *cli) processWordsCmd() *cobra.Command {
	var (
		lang string
		srt  bool
	)
	cmd := &cobra.Command{
		Use:   "process-words FILE",
		Short: "Print a course file with lemma frequencies of a text",
		Long: `Lemmatizes every line of FILE and prints a course JSON object mapping each
lemma to its frequency, most frequent first. With --srt, FILE is read as
subtitles and only the spoken lines are counted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := c.setup()
			if err != nil {
				return err
			}
			lines, err := readLines(args[0], srt)
			if err != nil {
				return err
			}
			counts, err := course.CountLemmas(cmd.Context(), c.newLemmatizer(cfg, logger), lang, lines)
			if err != nil {
				return err
			}
			logger.Info("words counted", slog.Int("lines", len(lines)), slog.Int("lemmas", len(counts)))
			return course.WriteCourse(c.stdout, counts)
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "es", "Language code")
	cmd.Flags().BoolVar(&srt, "srt", false, "Read FILE as SRT subtitles")
	return cmd
}

func (c *cli) processSRTCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process-srt FILE",
		Short: "Print the spoken lines of an SRT subtitle file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := readLines(args[0], true)
			if err != nil {
				return err
			}
			for _, l := range lines {
				if _, err := fmt.Fprintln(c.stdout, l); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func readLines(path string, srt bool) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if srt {
		return course.SubtitleLines(f)
	}
	return course.TextLines(f)
}
