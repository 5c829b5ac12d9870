// Package config loads runtime settings from INTAKE_-prefixed environment
// variables. Every collaborator is optional: missing settings degrade the
// matching feature instead of failing startup.
package config

import (
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Notion  NotionConfig  `koanf:"notion"`
	Suggest SuggestConfig `koanf:"suggest"`
	Files   FilesConfig   `koanf:"files"`
	OpenAI  OpenAIConfig  `koanf:"openai"`
	Log     LogConfig     `koanf:"log"`
}

type NotionConfig struct {
	Token      string `koanf:"token"`
	DatabaseID string `koanf:"database_id"`
	BaseURL    string `koanf:"base_url"`
}

type SuggestConfig struct {
	BaseURL string `koanf:"base_url"`
	Token   string `koanf:"token"`
}

type FilesConfig struct {
	BaseURL string `koanf:"base_url"`
	Token   string `koanf:"token"`
}

type OpenAIConfig struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider("INTAKE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "INTAKE_")), "_", ".", 1)
	}), nil); err != nil {
		return nil, err
	}

	// Default values
	if !k.Exists("openai.model") {
		k.Set("openai.model", "gpt-4o-mini")
	}
	if !k.Exists("log.level") {
		k.Set("log.level", "info")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
