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
	"assistente/internal/infra/gemini"
	"assistente/internal/infra/gtts"
	"assistente/internal/infra/openai"
	"assistente/internal/infra/web"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	cfg := loadConfig(*configPath)
	logger := setupLogger(cfg.Log)

	listenAddr := cfg.Server.Addr
	if *addr != "" {
		listenAddr = *addr
	}

	matcher := command.NewMatcher(command.BrowserOpener{}, logger)
	assistant := application.NewAssistant(
		application.NewTextSTT(nil),
		&application.SilentTTS{},
		createIntelligence(cfg, logger),
		matcher,
		cfg.ExitPhrases,
		logger,
	)

	server := web.NewServer(listenAddr, cfg.Server.AuthToken, assistant, gtts.NewClient(cfg.Language), logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := server.Start(ctx); err != nil {
		logger.Error("starting web server", "error", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	if err := server.Stop(); err != nil {
		logger.Error("stopping web server", "error", err)
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

func createIntelligence(cfg *config.Config, logger *slog.Logger) application.Intelligence {
	key, ok := cfg.AIKey()
	if !ok {
		logger.Warn("no API key configured, only local commands will work", "engine", cfg.AI.Engine)
		return nil
	}

	delay, err := time.ParseDuration(cfg.AI.Retry.BaseDelay)
	if err != nil {
		logger.Warn("invalid retry base delay, using default", "value", cfg.AI.Retry.BaseDelay, "error", err)
		delay = time.Second
	}
	policy := infra.Policy{MaxAttempts: cfg.AI.Retry.MaxAttempts, BaseDelay: delay}

	switch cfg.AI.Engine {
	case "anthropic":
		return anthropic.NewChatClient(key, cfg.Anthropic.Model, cfg.AI.SystemPrompt, policy, logger)
	case "gemini":
		return gemini.NewClient(key, cfg.Gemini.Model, cfg.AI.SystemPrompt, policy, logger)
	default:
		return openai.NewChatClient(key, cfg.OpenAI.ChatModel, cfg.AI.SystemPrompt, policy, logger)
	}
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
