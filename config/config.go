package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Placeholder is the dummy API key value shipped in example configs. A key
// equal to it is treated the same as no key at all.
const Placeholder = "sua_chave_api_aqui"

type Config struct {
	Language    string          `yaml:"language"`
	WakeWord    string          `yaml:"wake_word"`
	ExitPhrases []string        `yaml:"exit_phrases"`
	STT         STTConfig       `yaml:"stt"`
	TTS         TTSConfig       `yaml:"tts"`
	AI          AIConfig        `yaml:"ai"`
	OpenAI      OpenAIConfig    `yaml:"openai"`
	Anthropic   AnthropicConfig `yaml:"anthropic"`
	Gemini      GeminiConfig    `yaml:"gemini"`
	Server      ServerConfig    `yaml:"server"`
	Log         LogConfig       `yaml:"log"`
}

type STTConfig struct {
	Engine        string `yaml:"engine"`
	RecordSeconds int    `yaml:"record_seconds"`
	SampleRate    int    `yaml:"sample_rate"`
}

type TTSConfig struct {
	Engine  string `yaml:"engine"`
	Command string `yaml:"command"`
	Player  string `yaml:"player"`
}

type AIConfig struct {
	Engine       string      `yaml:"engine"`
	SystemPrompt string      `yaml:"system_prompt"`
	Retry        RetryConfig `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts int    `yaml:"max_attempts"`
	BaseDelay   string `yaml:"base_delay"`
}

type OpenAIConfig struct {
	APIKey    string `yaml:"api_key"`
	ChatModel string `yaml:"chat_model"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	AuthToken string `yaml:"auth_token"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

// Default returns a config with every default applied, for running without
// a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// AIKey returns the credential for the selected intelligence engine and
// whether it is usable. An empty or placeholder key means the remote
// intelligence is unavailable, which is not an error.
func (c *Config) AIKey() (string, bool) {
	var key string
	switch c.AI.Engine {
	case "anthropic":
		key = c.Anthropic.APIKey
	case "gemini":
		key = c.Gemini.APIKey
	default:
		key = c.OpenAI.APIKey
	}
	if key == "" || key == Placeholder {
		return "", false
	}
	return key, true
}

func (c *Config) setDefaults() {
	if c.Language == "" {
		c.Language = "pt"
	}
	if c.WakeWord == "" {
		c.WakeWord = "assistente"
	}
	if len(c.ExitPhrases) == 0 {
		c.ExitPhrases = []string{"sair", "encerrar", "exit", "tchau"}
	}
	if c.STT.Engine == "" {
		c.STT.Engine = "voice"
	}
	if c.STT.RecordSeconds == 0 {
		c.STT.RecordSeconds = 5
	}
	if c.STT.SampleRate == 0 {
		c.STT.SampleRate = 16000
	}
	if c.TTS.Engine == "" {
		c.TTS.Engine = "gtts"
	}
	if c.AI.Engine == "" {
		c.AI.Engine = "openai"
	}
	if c.AI.SystemPrompt == "" {
		c.AI.SystemPrompt = "Você é um assistente virtual útil e conciso. Responda em português."
	}
	if c.AI.Retry.MaxAttempts == 0 {
		c.AI.Retry.MaxAttempts = 3
	}
	if c.AI.Retry.BaseDelay == "" {
		c.AI.Retry.BaseDelay = "1s"
	}
	if c.OpenAI.ChatModel == "" {
		c.OpenAI.ChatModel = "gpt-4o-mini"
	}
	if c.Anthropic.Model == "" {
		c.Anthropic.Model = "claude-sonnet-4-20250514"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.0-flash"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}
