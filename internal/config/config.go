// Package config loads and validates the kbchat configuration.
// Configuration lives in a TOML file; Yandex credentials may also come
// from the environment, which takes precedence over the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/kbchat-cli/internal/core/domain"
)

// Provider names accepted in the [provider] setting.
const (
	ProviderYandex = "yandex"
	ProviderOllama = "ollama"
)

// Default values applied when the config file omits a setting.
const (
	DefaultTopK            = 3
	DefaultMaxContextChars = 3000
	DefaultHistoryLimit    = 10
	DefaultTemperature     = 0.7
	DefaultMaxTokens       = 1000
	DefaultIndexDir        = "index"
	DefaultDocsDir         = "docs"

	// DefaultSystemPrompt instructs the model to stay inside the
	// retrieved context.
	DefaultSystemPrompt = "You are a helpful assistant answering questions about a knowledge base. " +
		"Answer using only the provided context. If the context does not contain " +
		"the answer, say you do not know."

	// DefaultContextTemplate wraps the retrieved context and the user
	// question. The first %s is the context, the second is the question.
	DefaultContextTemplate = "Context:\n%s\n\nQuestion: %s"
)

// Environment variables that override file-based Yandex credentials.
const (
	envYandexAPIKey   = "YANDEX_API_KEY"
	envYandexFolderID = "YANDEX_FOLDER_ID"
)

// Config is the root configuration.
type Config struct {
	// Provider selects the AI backend: "yandex" or "ollama".
	Provider string `toml:"provider"`

	// IndexDir is where the vector index artifacts live.
	IndexDir string `toml:"index_dir"`

	// DocsDir is the knowledge base document directory.
	DocsDir string `toml:"docs_dir"`

	Yandex    Yandex    `toml:"yandex"`
	Ollama    Ollama    `toml:"ollama"`
	Retrieval Retrieval `toml:"retrieval"`
	Chat      Chat      `toml:"chat"`
}

// Yandex holds Yandex Cloud credentials and model names.
type Yandex struct {
	APIKey     string `toml:"api_key"`
	FolderID   string `toml:"folder_id"`
	EmbedModel string `toml:"embed_model"`
	ChatModel  string `toml:"chat_model"`

	// RequestRate limits embedding calls per second during indexing.
	RequestRate float64 `toml:"request_rate"`
}

// Ollama holds local Ollama server settings.
type Ollama struct {
	BaseURL    string `toml:"base_url"`
	EmbedModel string `toml:"embed_model"`
	ChatModel  string `toml:"chat_model"`
}

// Retrieval controls context assembly.
type Retrieval struct {
	// TopK is how many nearest fragments to retrieve per query.
	TopK int `toml:"top_k"`

	// MaxContextChars caps the assembled context length in characters.
	MaxContextChars int `toml:"max_context_chars"`
}

// Chat controls answer generation and conversation history.
type Chat struct {
	// HistoryLimit is the number of exchanges kept; the stored history
	// is trimmed to twice this many messages.
	HistoryLimit int `toml:"history_limit"`

	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`

	// SystemPrompt is the instruction prepended to every conversation.
	SystemPrompt string `toml:"system_prompt"`

	// ContextTemplate formats the retrieved context and the question
	// into the final user message. Must contain two %s verbs.
	ContextTemplate string `toml:"context_template"`
}

// Default returns a Config populated with defaults.
func Default() *Config {
	return &Config{
		Provider: ProviderYandex,
		IndexDir: DefaultIndexDir,
		DocsDir:  DefaultDocsDir,
		Retrieval: Retrieval{
			TopK:            DefaultTopK,
			MaxContextChars: DefaultMaxContextChars,
		},
		Chat: Chat{
			HistoryLimit:    DefaultHistoryLimit,
			Temperature:     DefaultTemperature,
			MaxTokens:       DefaultMaxTokens,
			SystemPrompt:    DefaultSystemPrompt,
			ContextTemplate: DefaultContextTemplate,
		},
	}
}

// Load reads the config file at path, applies defaults for omitted
// settings, and overlays environment credentials. A missing file is not
// an error: defaults plus environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

// DefaultPath returns the default config file location,
// ~/.kbchat/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".kbchat", "config.toml"), nil
}

// applyDefaults restores defaults for settings the file set to zero.
func (c *Config) applyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderYandex
	}
	if c.IndexDir == "" {
		c.IndexDir = DefaultIndexDir
	}
	if c.DocsDir == "" {
		c.DocsDir = DefaultDocsDir
	}
	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = DefaultTopK
	}
	if c.Retrieval.MaxContextChars <= 0 {
		c.Retrieval.MaxContextChars = DefaultMaxContextChars
	}
	if c.Chat.HistoryLimit <= 0 {
		c.Chat.HistoryLimit = DefaultHistoryLimit
	}
	if c.Chat.Temperature == 0 {
		c.Chat.Temperature = DefaultTemperature
	}
	if c.Chat.MaxTokens <= 0 {
		c.Chat.MaxTokens = DefaultMaxTokens
	}
	if c.Chat.SystemPrompt == "" {
		c.Chat.SystemPrompt = DefaultSystemPrompt
	}
	if c.Chat.ContextTemplate == "" {
		c.Chat.ContextTemplate = DefaultContextTemplate
	}
}

// applyEnv overlays credentials from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv(envYandexAPIKey); v != "" {
		c.Yandex.APIKey = v
	}
	if v := os.Getenv(envYandexFolderID); v != "" {
		c.Yandex.FolderID = v
	}
}

// Validate checks that the selected provider has what it needs.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderYandex:
		if c.Yandex.APIKey == "" {
			return fmt.Errorf("%w: yandex API key (set %s or yandex.api_key)",
				domain.ErrConfigMissing, envYandexAPIKey)
		}
		if c.Yandex.FolderID == "" {
			return fmt.Errorf("%w: yandex folder ID (set %s or yandex.folder_id)",
				domain.ErrConfigMissing, envYandexFolderID)
		}
		return nil
	case ProviderOllama:
		return nil
	default:
		return fmt.Errorf("unsupported provider %q (use %q or %q)",
			c.Provider, ProviderYandex, ProviderOllama)
	}
}
