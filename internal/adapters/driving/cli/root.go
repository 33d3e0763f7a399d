// Package cli implements the kbchat command line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbchat-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/kbchat-cli/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/kbchat-cli/internal/config"
	"github.com/custodia-labs/kbchat-cli/internal/core/services"
	"github.com/custodia-labs/kbchat-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "kbchat",
	Short: "Chat with a local knowledge base",
	Long: `kbchat answers questions about a directory of text documents.

Documents are embedded and stored in a local vector index; answers are
generated by a language model grounded on the most relevant fragments.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.kbchat/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output to stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves the --config flag and loads the configuration.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return config.Load(path)
}

// app bundles the wired pipeline with its resource cleanup.
type app struct {
	cfg      *config.Config
	pipeline *services.Pipeline
	closers  []func() error
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			logger.Warn("Cleanup failed: %v", err)
		}
	}
}

// newApp loads the configuration and wires the pipeline. The persisted
// index is loaded if present; its absence is not an error here.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	embedder, err := ai.CreateEmbeddingService(cfg)
	if err != nil {
		return nil, fmt.Errorf("create embedding service: %w", err)
	}
	completer, err := ai.CreateCompletionService(cfg)
	if err != nil {
		embedder.Close()
		return nil, fmt.Errorf("create completion service: %w", err)
	}

	index := flat.New(cfg.IndexDir)
	retriever := services.NewRetriever(embedder, index, cfg.Retrieval.TopK, cfg.Retrieval.MaxContextChars)
	pipeline := services.NewPipeline(embedder, completer, index, retriever, services.PipelineOptions{
		SystemPrompt:    cfg.Chat.SystemPrompt,
		ContextTemplate: cfg.Chat.ContextTemplate,
		Temperature:     cfg.Chat.Temperature,
		MaxTokens:       cfg.Chat.MaxTokens,
		HistoryLimit:    cfg.Chat.HistoryLimit,
	})

	if _, err := pipeline.LoadIndex(); err != nil {
		embedder.Close()
		completer.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		pipeline: pipeline,
		closers:  []func() error{embedder.Close, completer.Close, index.Close},
	}, nil
}
