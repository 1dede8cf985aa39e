package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "debated",
	Short: "Multi-agent debate orchestrator",
	Long: `debated builds a cast of agents for a topic and runs a moderated debate
between them until a final decision is reached. Progress streams as
server-sent events.`,
	SilenceUsage: true,
}

var (
	configPath string
	debugLogs  bool
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $DEBATEGRAPH_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&debugLogs, "debug", false, "log at debug level")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every model output")
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if debugLogs {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
