package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// APIKeyEnv is the environment variable carrying the Gemini credential.
const APIKeyEnv = "GOOGLE_API_KEY"

type Config struct {
	Gemini     GeminiConfig     `yaml:"gemini"`
	Poll       PollConfig       `yaml:"poll"`
	Server     ServerConfig     `yaml:"server"`
	Microphone MicrophoneConfig `yaml:"microphone"`
	Log        LogConfig        `yaml:"log"`
}

type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type PollConfig struct {
	Interval string `yaml:"interval"`
	Timeout  string `yaml:"timeout"`
}

type ServerConfig struct {
	Transport string `yaml:"transport"`
	Addr      string `yaml:"addr"`
	AuthToken string `yaml:"auth_token"`
}

type MicrophoneConfig struct {
	SampleRate int    `yaml:"sample_rate"`
	Duration   string `yaml:"duration"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads .env (if any) and the YAML file at path. Missing files are not
// an error; defaults and the environment still apply.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if key := os.Getenv(APIKeyEnv); key != "" {
		cfg.Gemini.APIKey = key
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-3-pro-preview"
	}
	if c.Poll.Interval == "" {
		c.Poll.Interval = "10s"
	}
	if c.Poll.Timeout == "" {
		c.Poll.Timeout = "10m"
	}
	if c.Server.Transport == "" {
		c.Server.Transport = "stdio"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Microphone.SampleRate == 0 {
		c.Microphone.SampleRate = 16000
	}
	if c.Microphone.Duration == "" {
		c.Microphone.Duration = "10s"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// PollInterval parses Poll.Interval, falling back to 10s on bad input.
func (c *Config) PollInterval() time.Duration {
	return parseDuration(c.Poll.Interval, 10*time.Second)
}

// PollTimeout parses Poll.Timeout, falling back to 10m on bad input.
func (c *Config) PollTimeout() time.Duration {
	return parseDuration(c.Poll.Timeout, 10*time.Minute)
}

func (c *Config) RecordDuration() time.Duration {
	return parseDuration(c.Microphone.Duration, 10*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
