package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/babble-backend/internal/app"
	"github.com/heartmarshall/babble-backend/internal/config"
	"github.com/heartmarshall/babble-backend/internal/lemma"
)

type lemmatizer interface {
	Normalize(ctx context.Context, lang, text string, opts lemma.Options) ([]string, error)
}

// cli carries the global flags and the seams tests replace.
type cli struct {
	configPath string
	verbose    bool

	stdout io.Writer
	stderr io.Writer

	loadConfig    func(path string) (*config.Config, error)
	newLemmatizer func(cfg *config.Config, logger *slog.Logger) lemmatizer
}

func newCLI(stdout, stderr io.Writer) *cli {
	return &cli{
		stdout:     stdout,
		stderr:     stderr,
		loadConfig: config.LoadFile,
		newLemmatizer: func(cfg *config.Config, logger *slog.Logger) lemmatizer {
			return app.NewNormalizer(cfg, logger)
		},
	}
}

func (c *cli) root() *cobra.Command {
	root := &cobra.Command{
		Use:          "babble",
		Short:        "Operate the Babble exercise backend",
		SilenceUsage: true,
		Version:      app.BuildVersion(),
	}
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Config file (default: $CONFIG_PATH or ./config.yaml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		c.lemmatizeCmd(),
		c.processWordsCmd(),
		c.processSRTCmd(),
		c.fillCmd(),
		c.migrateCmd(),
		c.tokenCmd(),
	)
	return root
}

// setup loads configuration and builds a logger writing to stderr.
func (c *cli) setup() (*config.Config, *slog.Logger, error) {
	path := c.configPath
	if path == "" {
		path = envConfigPath()
	}
	cfg, err := c.loadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	if c.verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, app.NewLoggerTo(c.stderr, cfg.Log), nil
}

func envConfigPath() string {
	return os.Getenv("CONFIG_PATH")
}
