package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"assistente/config"
	"assistente/internal/application"
	"assistente/internal/command"
	"assistente/internal/infra"
	"assistente/internal/infra/anthropic"
	"assistente/internal/infra/audio"
	"assistente/internal/infra/gemini"
	"assistente/internal/infra/gtts"
	"assistente/internal/infra/openai"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	mode := flag.String("mode", "", "input mode: voice or text (overrides config)")
	once := flag.Bool("once", false, "execute a single command and exit")
	commandText := flag.String("command", "", "command text for --once")
	noAI := flag.Bool("no-ai", false, "disable the remote intelligence")
	flag.Parse()

	cfg := loadConfig(*configPath)
	logger := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	sttEngine := cfg.STT.Engine
	if *mode != "" {
		sttEngine = *mode
	}
	if *once {
		sttEngine = "text"
	}

	tts := createTTS(cfg, logger)
	stt, stopSTT := createSTT(ctx, cfg, sttEngine, logger)
	defer stopSTT()

	ai := createIntelligence(cfg, *noAI, logger)

	matcher := command.NewMatcher(command.BrowserOpener{}, logger)
	assistant := application.NewAssistant(stt, tts, ai, matcher, cfg.ExitPhrases, logger)

	if *once {
		text := *commandText
		if text == "" {
			text = strings.Join(flag.Args(), " ")
		}
		result := assistant.ExecuteOnce(ctx, text)
		if !result.Success {
			os.Exit(1)
		}
		return
	}

	logger.Info("starting assistant", "stt", sttEngine, "tts", cfg.TTS.Engine, "ai", cfg.AI.Engine)

	if err := assistant.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("assistant error", "error", err)
		os.Exit(1)
	}
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		if os.IsNotExist(err) || strings.Contains(err.Error(), "no such file") {
			slog.Warn("config file not found, using defaults", "path", path)
			return config.Default()
		}
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	return cfg
}

func retryPolicy(cfg config.RetryConfig, logger *slog.Logger) infra.Policy {
	delay, err := time.ParseDuration(cfg.BaseDelay)
	if err != nil {
		logger.Warn("invalid retry base delay, using default", "value", cfg.BaseDelay, "error", err)
		delay = time.Second
	}
	return infra.Policy{MaxAttempts: cfg.MaxAttempts, BaseDelay: delay}
}

func createIntelligence(cfg *config.Config, disabled bool, logger *slog.Logger) application.Intelligence {
	if disabled {
		logger.Info("remote intelligence disabled by flag")
		return nil
	}

	key, ok := cfg.AIKey()
	if !ok {
		logger.Warn("no API key configured, only local commands will work", "engine", cfg.AI.Engine)
		return nil
	}

	policy := retryPolicy(cfg.AI.Retry, logger)

	switch cfg.AI.Engine {
	case "anthropic":
		return anthropic.NewChatClient(key, cfg.Anthropic.Model, cfg.AI.SystemPrompt, policy, logger)
	case "gemini":
		return gemini.NewClient(key, cfg.Gemini.Model, cfg.AI.SystemPrompt, policy, logger)
	case "openai":
		return openai.NewChatClient(key, cfg.OpenAI.ChatModel, cfg.AI.SystemPrompt, policy, logger)
	default:
		logger.Warn("unknown intelligence engine, using openai", "engine", cfg.AI.Engine)
		return openai.NewChatClient(key, cfg.OpenAI.ChatModel, cfg.AI.SystemPrompt, policy, logger)
	}
}

func createTTS(cfg *config.Config, logger *slog.Logger) application.TextToSpeech {
	switch cfg.TTS.Engine {
	case "silent":
		return &application.SilentTTS{Out: os.Stdout}
	case "command":
		tts, err := audio.NewCommandTTS(cfg.TTS.Command, logger)
		if err != nil {
			logger.Warn("command tts unavailable, using silent output", "error", err)
			return &application.SilentTTS{Out: os.Stdout}
		}
		return tts
	default:
		player, err := audio.NewPlayer(cfg.TTS.Player, logger)
		if err != nil {
			logger.Warn("no audio player, using silent output", "error", err)
			return &application.SilentTTS{Out: os.Stdout}
		}
		return gtts.NewSpeaker(gtts.NewClient(cfg.Language), player, logger)
	}
}

// createSTT builds the utterance source. Voice mode needs a working
// microphone and a transcription credential; when either is missing it falls
// back to interactive text input.
func createSTT(ctx context.Context, cfg *config.Config, engine string, logger *slog.Logger) (application.SpeechToText, func()) {
	if engine != "voice" {
		return application.NewInteractiveSTT(os.Stdin, os.Stdout), func() {}
	}

	if cfg.OpenAI.APIKey == "" || cfg.OpenAI.APIKey == config.Placeholder {
		logger.Warn("voice mode needs openai.api_key for transcription, switching to text mode")
		return application.NewInteractiveSTT(os.Stdin, os.Stdout), func() {}
	}

	mic := audio.NewMicrophone(cfg.WakeWord, cfg.STT.SampleRate, cfg.STT.RecordSeconds, logger)
	if err := mic.Start(ctx); err != nil {
		logger.Warn("microphone unavailable, switching to text mode", "error", err)
		return application.NewInteractiveSTT(os.Stdin, os.Stdout), func() {}
	}

	whisper := openai.NewWhisperClient(cfg.OpenAI.APIKey, cfg.Language, retryPolicy(cfg.AI.Retry, logger))
	stop := func() {
		if err := mic.Stop(); err != nil {
			logger.Warn("stopping microphone", "error", err)
		}
	}
	return audio.NewVoiceSTT(mic, whisper, logger), stop
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
