package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dharc-org/provgen/config"
	"github.com/dharc-org/provgen/hierarchy"
	"github.com/dharc-org/provgen/pipeline"
	"github.com/dharc-org/provgen/provenance"
	"github.com/dharc-org/provgen/rdf"
)

func generateCmd(configPath, logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate meta.ttl / prov.nq pairs for every stage folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(*logLevel)
			cfg, err := loadConfig(*configPath, logger)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			summary, err := runGenerate(ctx, cfg, logger)
			if err != nil {
				return err
			}
			printSummary(summary)
			return nil
		},
	}
}

func watchCmd(configPath, logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Regenerate outputs whenever the input files change",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(*logLevel)
			cfg, err := loadConfig(*configPath, logger)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			// Initial pass before settling into the watch loop.
			if summary, err := runGenerate(ctx, cfg, logger); err != nil {
				return err
			} else {
				printSummary(summary)
			}

			paths := []string{cfg.Graph.Path}
			if cfg.Hierarchy.Structure != "" {
				paths = append(paths, cfg.Hierarchy.Structure)
			}
			watcher, err := pipeline.NewWatcher(pipeline.WatcherConfig{
				Paths:         paths,
				DebounceDelay: time.Second,
				Logger:        logger,
				Regenerate: func(ctx context.Context) error {
					summary, err := runGenerate(ctx, cfg, logger)
					if err != nil {
						return err
					}
					printSummary(summary)
					return nil
				},
			})
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}

			logger.Info("Watching for input changes", slog.Any("paths", paths))
			if err := watcher.Run(ctx); err != nil && err != context.Canceled {
				return err
			}
			return nil
		},
	}
}

// runGenerate executes one full pipeline pass.
func runGenerate(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipeline.Summary, error) {
	kg, err := loadKnowledgeGraph(cfg.Graph.Path)
	if err != nil {
		return nil, err
	}
	logger.Info("Knowledge graph loaded",
		slog.String("path", cfg.Graph.Path),
		slog.Int("triples", kg.Len()))

	source, err := buildSource(cfg)
	if err != nil {
		return nil, err
	}

	var publisher *pipeline.Publisher
	if cfg.NATS.URL != "" {
		publisher, err = pipeline.NewPublisher(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			return nil, err
		}
		defer publisher.Close()
		logger.Info("Publishing provenance graphs", slog.String("subject", cfg.NATS.Subject))
	}

	p := pipeline.New(pipeline.Params{
		KnowledgeGraph: kg,
		Source:         source,
		OutputDir:      cfg.Output.Dir,
		BaseIRI:        cfg.Graph.Base,
		Agent:          cfg.Provenance.Agent,
		Options: provenance.Options{
			PrimarySource:    cfg.Provenance.PrimarySource,
			AssertEntityType: cfg.Provenance.AssertEntityType,
			Describe:         cfg.Provenance.Describe,
		},
		Publisher: publisher,
		Logger:    logger,
	})
	return p.Run(ctx)
}

func loadKnowledgeGraph(path string) (*rdf.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open knowledge graph: %w", err)
	}
	defer f.Close()

	g, err := rdf.DecodeTurtle(f)
	if err != nil {
		return nil, fmt.Errorf("parse knowledge graph %s: %w", path, err)
	}
	return g, nil
}

// buildSource picks the hierarchy source: a structure document when
// configured, otherwise a live filesystem scan.
func buildSource(cfg *config.Config) (hierarchy.Source, error) {
	if cfg.Hierarchy.Structure != "" {
		doc, err := hierarchy.LoadStructure(cfg.Hierarchy.Structure)
		if err != nil {
			return nil, err
		}
		return hierarchy.NewStructureSource(doc), nil
	}
	return hierarchy.NewFSSource(cfg.Hierarchy.Root), nil
}

func printSummary(s *pipeline.Summary) {
	fmt.Printf("\nRun %s complete: %d stage folders, %d snapshots\n", s.RunID, s.Processed, s.Snapshots)
	if len(s.Skipped) > 0 {
		fmt.Printf("Skipped %d folders:\n", len(s.Skipped))
		for _, skip := range s.Skipped {
			fmt.Printf("  %s: %s\n", skip.Entry.Path, skip.Reason)
		}
	}
	if len(s.Failed) > 0 {
		fmt.Printf("Failed %d subjects:\n", len(s.Failed))
		for _, f := range s.Failed {
			fmt.Printf("  %s: %v\n", f.Subject, f.Err)
		}
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
