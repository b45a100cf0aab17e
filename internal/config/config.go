// Package config loads goalplan settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix prefixes every environment override, e.g. GOALPLAN_OPENAI_MODEL.
	EnvPrefix = "GOALPLAN"
	// HomeEnv overrides the data directory.
	HomeEnv = "GOALPLAN_HOME"

	dataDirName    = ".goalplan"
	configFileName = "config.yaml"
)

// Config is the full set of settings.
type Config struct {
	Provider   string           `yaml:"provider" mapstructure:"provider"`
	OpenAI     OpenAIConfig     `yaml:"openai" mapstructure:"openai"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Generation GenerationConfig `yaml:"generation" mapstructure:"generation"`
	Storage    StorageConfig    `yaml:"storage" mapstructure:"storage"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" mapstructure:"telemetry"`
}

type OpenAIConfig struct {
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
}

type AnthropicConfig struct {
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

type GenerationConfig struct {
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// StorageConfig selects where plans are saved. Backend is file, sqlite or
// mysql.
type StorageConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"`
	Path    string `yaml:"path" mapstructure:"path"`
	DSN     string `yaml:"dsn" mapstructure:"dsn"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// LogConfig controls the slog handler. An empty File logs to stderr.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	File   string `yaml:"file" mapstructure:"file"`
}

type TelemetryConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// DataDir returns the directory holding config, plans and logs.
func DataDir() string {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return dataDirName
	}
	return filepath.Join(home, dataDirName)
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DataDir(), configFileName)
}

// Default returns the built-in settings.
func Default() *Config {
	dir := DataDir()
	return &Config{
		Provider: "auto",
		OpenAI: OpenAIConfig{
			Model:       "gpt-3.5-turbo",
			Temperature: 0.7,
			MaxTokens:   2000,
		},
		Anthropic: AnthropicConfig{
			Model:     "claude-haiku-4-5-20251001",
			MaxTokens: 2000,
		},
		Generation: GenerationConfig{Timeout: 2 * time.Minute},
		Storage: StorageConfig{
			Backend: "file",
			Path:    filepath.Join(dir, "plans.json"),
		},
		Server:    ServerConfig{Addr: ":3000"},
		Log:       LogConfig{Level: "info", Format: "text"},
		Telemetry: TelemetryConfig{},
	}
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("provider", d.Provider)
	v.SetDefault("openai.api_key", d.OpenAI.APIKey)
	v.SetDefault("openai.model", d.OpenAI.Model)
	v.SetDefault("openai.base_url", d.OpenAI.BaseURL)
	v.SetDefault("openai.temperature", d.OpenAI.Temperature)
	v.SetDefault("openai.max_tokens", d.OpenAI.MaxTokens)
	v.SetDefault("anthropic.api_key", d.Anthropic.APIKey)
	v.SetDefault("anthropic.model", d.Anthropic.Model)
	v.SetDefault("anthropic.max_tokens", d.Anthropic.MaxTokens)
	v.SetDefault("generation.timeout", d.Generation.Timeout)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.dsn", d.Storage.DSN)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
}

// Load reads settings from path, or from DefaultPath when path is empty.
// A missing default file is not an error; a missing explicit file is.
// Environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("openai.api_key", EnvPrefix+"_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("anthropic.api_key", EnvPrefix+"_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if port := os.Getenv("PORT"); port != "" && os.Getenv(EnvPrefix+"_SERVER_ADDR") == "" {
		cfg.Server.Addr = ":" + port
	}
	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	cfg.Log.File = expandHome(cfg.Log.File)
	return &cfg, nil
}

// Write saves cfg as YAML at path. An existing file is only replaced when
// force is set.
func Write(path string, cfg *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Redacted returns a copy with secrets masked for display.
func (c *Config) Redacted() *Config {
	out := *c
	out.OpenAI.APIKey = redact(c.OpenAI.APIKey)
	out.Anthropic.APIKey = redact(c.Anthropic.APIKey)
	out.Storage.DSN = redact(c.Storage.DSN)
	return &out
}

// YAML renders the config as YAML.
func (c *Config) YAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && !strings.HasPrefix(rest, "/")) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
