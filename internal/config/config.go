// Package config は環境変数と .env から実行時設定を読み込みます。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/shouni/gemini-outpaint-kit/pkg/domain"
	"github.com/shouni/gemini-outpaint-kit/pkg/generator"
)

// Config は outpaint の実行時設定です。値は環境変数 (と .env) から読み込まれます。
type Config struct {
	// Gemini
	EnvAPIKey string `env:"GEMINI_API_KEY"`
	KeyFile   string `env:"OUTPAINT_KEY_FILE"`

	// Model が空なら generator.DefaultModel を使います。
	Model string `env:"GEMINI_MODEL"`

	// Logging
	LogLevel  string `env:"OUTPAINT_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"OUTPAINT_LOG_FORMAT" envDefault:"text"`

	// Source loading
	HTTPTimeout time.Duration `env:"OUTPAINT_HTTP_TIMEOUT" envDefault:"30s"`
	CacheTTL    time.Duration `env:"OUTPAINT_CACHE_TTL" envDefault:"30m"`

	// Export
	OutputDir string `env:"OUTPAINT_OUTPUT_DIR" envDefault:"output"`
}

// Load は .env があれば読み込んだうえで環境変数から Config を作ります。
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = generator.DefaultModel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は値の組み合わせを検証します。
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("OUTPAINT_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("OUTPAINT_HTTP_TIMEOUT must be positive")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("OUTPAINT_CACHE_TTL must not be negative")
	}
	return nil
}

// SlogLevel は LogLevel を slog.Level に変換します。不明な値は Info になります。
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// APIKey は環境変数のキーを優先し、なければ利用者が保存したキーファイルから読み込みます。
// どちらにもなければ KeyProvenanceNone の空キーを返します。
func (c *Config) APIKey() (domain.APIKey, error) {
	if v := strings.TrimSpace(c.EnvAPIKey); v != "" {
		return domain.APIKey{Value: v, Provenance: domain.KeyProvenanceEnvironment}, nil
	}
	if c.KeyFile == "" {
		return domain.APIKey{Provenance: domain.KeyProvenanceNone}, nil
	}

	data, err := os.ReadFile(c.KeyFile)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.APIKey{Provenance: domain.KeyProvenanceNone}, nil
	}
	if err != nil {
		return domain.APIKey{}, fmt.Errorf("キーファイルの読み込みに失敗しました: %w", err)
	}
	v := strings.TrimSpace(string(data))
	if v == "" {
		return domain.APIKey{Provenance: domain.KeyProvenanceNone}, nil
	}
	return domain.APIKey{Value: v, Provenance: domain.KeyProvenanceUserStored}, nil
}

// StoreKey は利用者が入力したキーをキーファイルに保存します。
func (c *Config) StoreKey(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return domain.NewConfigurationError("API key must not be empty")
	}
	if c.KeyFile == "" {
		return domain.NewConfigurationError("OUTPAINT_KEY_FILE is not set")
	}
	if err := os.MkdirAll(filepath.Dir(c.KeyFile), 0o700); err != nil {
		return fmt.Errorf("キーファイルのディレクトリ作成に失敗しました: %w", err)
	}
	if err := os.WriteFile(c.KeyFile, []byte(value+"\n"), 0o600); err != nil {
		return fmt.Errorf("キーファイルの書き込みに失敗しました: %w", err)
	}
	return nil
}

// ClearKey は保存済みのキーファイルを削除します。存在しなければ何もしません。
func (c *Config) ClearKey() error {
	if c.KeyFile == "" {
		return nil
	}
	if err := os.Remove(c.KeyFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("キーファイルの削除に失敗しました: %w", err)
	}
	return nil
}
