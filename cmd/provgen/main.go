// Package main provides the provgen binary entry point. Provgen generates
// OCDM provenance snapshots and per-stage metadata files for a
// cultural-heritage digitisation workflow, driven by a knowledge graph and
// a folder hierarchy.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dharc-org/provgen/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "provgen"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Provenance generator for digitisation workflows",
		Long: `Provgen extracts per-stage metadata from a knowledge graph of
digitised cultural-heritage objects and records OCDM entity+snapshot
provenance for every subject, one named graph per subject.

For each stage folder of the hierarchy it writes:
- meta.ttl: the subject metadata captured at that stage
- prov.nq:  the subjects' snapshot history as N-Quads`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(generateCmd(&configPath, &logLevel))
	cmd.AddCommand(watchCmd(&configPath, &logLevel))
	cmd.AddCommand(structureCmd(&configPath, &logLevel))

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// setupLogging configures the default slog logger and returns it.
func setupLogging(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// loadConfig loads an explicit config file when given, otherwise the
// layered user/project configuration.
func loadConfig(configPath string, logger *slog.Logger) (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", configPath, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return cfg, nil
	}
	return config.NewLoader(logger).Load()
}
