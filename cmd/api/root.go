package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"demosite/api/internal/config"

	"github.com/spf13/cobra"
)

var (
	cfg    config.Config
	logger *slog.Logger
)

// rootCmd serves the API when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "api",
	Short: "Todo list and mindmap generator API",
	Long: `api serves a small todo list and an AI-assisted mindmap generator over HTTP.
Labels come from an OpenAI-compatible model when OPENAI_API_KEY is set and
from a built-in rule table otherwise.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger = newLogger(cfg.LogLevel, cfg.LogFormat)
		slog.SetDefault(logger)
	},
	RunE: runServe,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
}

func newLogger(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func parseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
