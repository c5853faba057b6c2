// Package config loads the service configuration from YAML, .env and the
// process environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dscruggs/lyre-studio/internal/logger"
)

// Config is the top-level service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Effects   EffectsConfig   `yaml:"effects"`
	Languages LanguagesConfig `yaml:"languages"`
	VoiceRef  VoiceRefConfig  `yaml:"voice_reference"`
	Log       logger.Config   `yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port           string        `yaml:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	MaxUploadMB    int           `yaml:"max_upload_mb"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	ShutdownGrace  time.Duration `yaml:"shutdown_grace"`
}

// Addr returns the listen address for Port.
func (s ServerConfig) Addr() string { return ":" + s.Port }

// MaxUploadBytes returns MaxUploadMB in bytes.
func (s ServerConfig) MaxUploadBytes() int64 { return int64(s.MaxUploadMB) << 20 }

// EffectsConfig locates the effect registry.
type EffectsConfig struct {
	File                 string  `yaml:"file"`
	ValidationSampleRate float64 `yaml:"validation_sample_rate"`
}

// LanguagesConfig locates the language catalogue.
type LanguagesConfig struct {
	File string `yaml:"file"`
}

// VoiceRefConfig configures the voice reference store.
type VoiceRefConfig struct {
	Dir        string `yaml:"dir"`
	SampleRate int    `yaml:"sample_rate"`
}

// DefaultAllowedOrigins matches the local frontend and API ports.
var DefaultAllowedOrigins = []string{"http://localhost:5173", "http://localhost:8000"}

// Load reads path, expands ${VAR} references, fills defaults and applies
// environment overrides. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}

		expanded := os.Expand(string(data), os.Getenv)
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	setDefaults(cfg)

	return cfg, nil
}

// LoadFromEnv loads .env if present and then the file named by
// LYRE_CONFIG, if any.
func LoadFromEnv() (*Config, error) {
	_ = godotenv.Load()

	return Load(os.Getenv("LYRE_CONFIG"))
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = SplitOrigins(v)
	}

	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAX_UPLOAD_MB: %w", err)
		}

		cfg.Server.MaxUploadMB = n
	}

	if v := os.Getenv("LYRE_EFFECTS_FILE"); v != "" {
		cfg.Effects.File = v
	}

	if v := os.Getenv("LYRE_LANGUAGES_FILE"); v != "" {
		cfg.Languages.File = v
	}

	if v := os.Getenv("LYRE_VOICE_REF_DIR"); v != "" {
		cfg.VoiceRef.Dir = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Log.File = v
	}

	return nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8000"
	}

	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = append([]string(nil), DefaultAllowedOrigins...)
	}

	if cfg.Server.MaxUploadMB <= 0 {
		cfg.Server.MaxUploadMB = 50
	}

	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 2 * time.Minute
	}

	if cfg.Server.ShutdownGrace <= 0 {
		cfg.Server.ShutdownGrace = 10 * time.Second
	}

	if cfg.Effects.File == "" {
		cfg.Effects.File = "config/effects.yaml"
	}

	if cfg.Effects.ValidationSampleRate <= 0 {
		cfg.Effects.ValidationSampleRate = 48000
	}

	if cfg.Languages.File == "" {
		cfg.Languages.File = "config/supported_languages.yaml"
	}

	if cfg.VoiceRef.Dir == "" {
		cfg.VoiceRef.Dir = os.TempDir()
	}

	if cfg.VoiceRef.SampleRate <= 0 {
		cfg.VoiceRef.SampleRate = 24000
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// SplitOrigins parses a comma separated origin list, dropping blanks.
func SplitOrigins(s string) []string {
	var out []string

	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}

	return out
}
