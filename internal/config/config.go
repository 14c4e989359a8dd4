package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures how ingested files are split into documents.
type ChunkerConfig struct {
	Type              string `yaml:"type"`
	SentencesPerChunk int    `yaml:"sentences_per_chunk"`
	OverlapSentences  int    `yaml:"overlap_sentences"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type       string `yaml:"type"`
	Collection string `yaml:"collection"`
	Distance   string `yaml:"distance"`
}

// SummarizerConfig selects and configures the summarizer.
type SummarizerConfig struct {
	Type         string `yaml:"type"`
	MaxSentences int    `yaml:"max_sentences"`
}

// RetrievalConfig controls how many documents are fetched.
type RetrievalConfig struct {
	RAGTopK        int `yaml:"rag_top_k"`
	SearchDefaultK int `yaml:"search_default_k"`
	SearchMaxK     int `yaml:"search_max_k"`
}

// OpenAIAnswerConfig configures the chat completion answer provider.
type OpenAIAnswerConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// AnswerConfig selects the remote model that answers prompts.
type AnswerConfig struct {
	Provider string `yaml:"provider"`
	Endpoint string `yaml:"endpoint"`
	UserID   string `yaml:"user_id"`
	// CookieEnv names the env var holding the session cookie, if any.
	CookieEnv   string              `yaml:"cookie_env"`
	TimeoutSecs int                 `yaml:"timeout_secs"`
	OpenAI      *OpenAIAnswerConfig `yaml:"openai,omitempty"`
}

// Timeout returns the request timeout; zero means none.
func (a AnswerConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// Cookie returns the session cookie from the configured env var.
func (a AnswerConfig) Cookie() string {
	if a.CookieEnv == "" {
		return ""
	}
	return os.Getenv(a.CookieEnv)
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Env   string `yaml:"env"`
	Level string `yaml:"level"`
	// Output is a file path, "stderr" or "stdout". Empty disables logging in the TUI.
	Output string `yaml:"output"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Answer      AnswerConfig      `yaml:"answer"`
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// Validate reports settings that cannot be served.
func (c *AppConfig) Validate() error {
	switch c.Embedder.Type {
	case "tfidf", "openai":
	default:
		return fmt.Errorf("unknown embedder type %q", c.Embedder.Type)
	}
	if c.VectorStore.Type != "memory" {
		return fmt.Errorf("unknown vector store type %q", c.VectorStore.Type)
	}
	switch c.Answer.Provider {
	case "skillcaptain", "openai":
	default:
		return fmt.Errorf("unknown answer provider %q", c.Answer.Provider)
	}
	if c.Retrieval.RAGTopK < 1 {
		return fmt.Errorf("retrieval.rag_top_k must be at least 1, got %d", c.Retrieval.RAGTopK)
	}
	if c.Retrieval.SearchMaxK < c.Retrieval.SearchDefaultK || c.Retrieval.SearchDefaultK < 1 {
		return fmt.Errorf("retrieval: need 1 <= search_default_k (%d) <= search_max_k (%d)",
			c.Retrieval.SearchDefaultK, c.Retrieval.SearchMaxK)
	}
	return nil
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./ragdemo.yaml first, then ~/.config/ragdemo/config.yaml.
// If neither exists it returns built-in defaults and an empty path.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "ragdemo.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := DefaultUserConfigPath()
	if err == nil {
		if _, err := os.Stat(userPath); err == nil {
			cfg, err := Load(userPath)
			return cfg, userPath, err
		}
	}
	return DefaultConfig(), "", nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DefaultUserConfigPath is ~/.config/ragdemo/config.yaml.
func DefaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ragdemo", "config.yaml"), nil
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "tfidf"
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}

	if cfg.Chunker.Type == "" {
		cfg.Chunker.Type = "sentence"
	}
	if cfg.Chunker.SentencesPerChunk == 0 {
		cfg.Chunker.SentencesPerChunk = 5
	}

	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "knowledge_base"
	}
	if cfg.VectorStore.Distance == "" {
		cfg.VectorStore.Distance = "cosine"
	}

	if cfg.Summarizer.Type == "" {
		cfg.Summarizer.Type = "frequency"
	}
	if cfg.Summarizer.MaxSentences == 0 {
		cfg.Summarizer.MaxSentences = 5
	}

	if cfg.Retrieval.RAGTopK == 0 {
		cfg.Retrieval.RAGTopK = 2
	}
	if cfg.Retrieval.SearchDefaultK == 0 {
		cfg.Retrieval.SearchDefaultK = 3
	}
	if cfg.Retrieval.SearchMaxK == 0 {
		cfg.Retrieval.SearchMaxK = 5
	}

	if cfg.Answer.Provider == "" {
		cfg.Answer.Provider = "skillcaptain"
	}
	if cfg.Answer.Endpoint == "" {
		cfg.Answer.Endpoint = "https://skillcaptain.app/unicorn/p/llm/openai"
	}
	if cfg.Answer.UserID == "" {
		cfg.Answer.UserID = "12"
	}
	if cfg.Answer.CookieEnv == "" {
		cfg.Answer.CookieEnv = "RAGDEMO_COOKIE"
	}
	if cfg.Answer.Provider == "openai" {
		if cfg.Answer.OpenAI == nil {
			cfg.Answer.OpenAI = &OpenAIAnswerConfig{}
		}
		if cfg.Answer.OpenAI.APIKeyEnv == "" {
			cfg.Answer.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Answer.OpenAI.Model == "" {
			cfg.Answer.OpenAI.Model = "gpt-4o-mini"
		}
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	if cfg.Logging.Env == "" {
		cfg.Logging.Env = "dev"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
