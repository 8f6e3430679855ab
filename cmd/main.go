package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"

	"faq-bot/handler"
	"faq-bot/internal/app"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: envLevel("LOG_LEVEL", slog.LevelInfo)}))
	slog.SetDefault(logger)

	cfg := app.Config{
		ResourceDir:      envStr("RESOURCE_DIR", ""),
		ParamPrefix:      envStr("PARAM_PREFIX", ""),
		TranscriptTable:  envStr("TRANSCRIPT_TABLE", ""),
		TerminalCategory: envStr("TERMINAL_CATEGORY", ""),
		FallbackAnswer:   os.Getenv("FALLBACK_ANSWER"),
		Iterations:       envInt("TRAINING_ITERATIONS", 0),
	}

	// ---- Service ----
	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		slog.Error("failed to build answer service", "err", err)
		os.Exit(1)
	}
	if err := a.Service.Warm(ctx); err != nil {
		slog.Error("failed to train categorizer", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	h, err := handler.NewHandler(a.Service)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func envStr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envLevel(key string, def slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		return def
	}
	return lvl
}
