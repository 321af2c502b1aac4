// Package pipeline orchestrates provenance generation: it walks a folder
// hierarchy, extracts per-stage metadata from the knowledge graph, builds
// OCDM snapshots, and writes meta.ttl / prov.nq pairs per stage folder.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dharc-org/provgen/hierarchy"
	"github.com/dharc-org/provgen/provenance"
	"github.com/dharc-org/provgen/rdf"
	"github.com/dharc-org/provgen/vocabulary/prov"
)

// MetaFileName and ProvFileName are the per-stage output files.
const (
	MetaFileName = "meta.ttl"
	ProvFileName = "prov.nq"
)

// buildSnapshot is swapped out in tests.
var buildSnapshot = provenance.BuildSnapshot

// Pipeline generates metadata and provenance output for one run. The
// knowledge graph is read-only and shared across stages; the minter is the
// only mutable shared state and carries its own lock.
type Pipeline struct {
	kg        *rdf.Graph
	source    hierarchy.Source
	outputDir string
	baseIRI   string
	agent     rdf.Term
	options   provenance.Options
	publisher *Publisher
	logger    *slog.Logger
}

// Params configures a Pipeline.
type Params struct {
	KnowledgeGraph *rdf.Graph
	Source         hierarchy.Source
	OutputDir      string
	// BaseIRI is the namespace object subjects live under; a folder with
	// object number NR maps to subject <BaseIRI>/<NR>.
	BaseIRI string
	// Agent is the responsible agent IRI recorded on every snapshot.
	Agent string
	// Options selects optional snapshot annotations.
	Options provenance.Options
	// Publisher, when non-nil, receives every generated provenance graph.
	Publisher *Publisher
	Logger    *slog.Logger
}

// New creates a pipeline.
func New(p Params) *Pipeline {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		kg:        p.KnowledgeGraph,
		source:    p.Source,
		outputDir: p.OutputDir,
		baseIRI:   p.BaseIRI,
		agent:     rdf.IRI(p.Agent),
		options:   p.Options,
		publisher: p.Publisher,
		logger:    logger,
	}
}

// Skip records a stage folder that was not processed and why.
type Skip struct {
	Entry  hierarchy.Entry
	Reason string
}

// Failure records a subject whose snapshot could not be built.
type Failure struct {
	Entry   hierarchy.Entry
	Subject string
	Err     error
}

// Summary describes the outcome of one run. Partial output plus a record
// of everything skipped or failed: a subject is never dropped silently.
type Summary struct {
	RunID       string
	GeneratedAt time.Time
	Processed   int
	Snapshots   int
	Skipped     []Skip
	Failed      []Failure
}

// Run processes every stage folder in the hierarchy. Per-subject input
// problems (missing attribution, unknown stage, bad folder name) are
// recorded and skipped; a cross-subject leakage error aborts the whole run.
// All snapshots produced in one run share a single logical generation time.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
	}

	entries, err := p.source.Entries()
	if err != nil {
		return nil, fmt.Errorf("enumerate hierarchy: %w", err)
	}

	minter := provenance.NewMinter()
	minter.ReserveGraph(p.kg)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stage, ok := prov.ParseStage(entry.StageName)
		if !ok {
			p.logger.Warn("Skipping unsupported stage folder",
				slog.String("path", entry.Path),
				slog.String("stage", entry.StageName))
			summary.Skipped = append(summary.Skipped, Skip{
				Entry:  entry,
				Reason: (&provenance.UnknownStageTagError{Tag: entry.StageName, Folder: entry.Folder}).Error(),
			})
			continue
		}

		nr, err := hierarchy.ExtractNR(entry.Folder)
		if err != nil {
			p.logger.Warn("Skipping folder without object number",
				slog.String("folder", entry.Folder),
				slog.String("error", err.Error()))
			summary.Skipped = append(summary.Skipped, Skip{Entry: entry, Reason: err.Error()})
			continue
		}

		if err := p.processStage(ctx, entry, stage, nr, minter, summary); err != nil {
			return nil, err
		}
	}

	p.logger.Info("Run complete",
		slog.String("run_id", summary.RunID),
		slog.Int("processed", summary.Processed),
		slog.Int("snapshots", summary.Snapshots),
		slog.Int("skipped", len(summary.Skipped)),
		slog.Int("failed", len(summary.Failed)))

	return summary, nil
}

// processStage produces the meta.ttl / prov.nq pair for one stage folder.
func (p *Pipeline) processStage(ctx context.Context, entry hierarchy.Entry, stage prov.Stage, nr int, minter *provenance.Minter, summary *Summary) error {
	metadata, err := provenance.StageMetadata(p.kg, nr, stage)
	if err != nil {
		return fmt.Errorf("extract metadata for %s: %w", entry.Path, err)
	}

	stageDir := filepath.Join(p.outputDir, entry.Sala, entry.Folder, entry.StageName)
	if err := os.MkdirAll(stageDir, 0755); err != nil {
		return fmt.Errorf("create stage directory: %w", err)
	}

	// An existing prov.nq means this stage was generated before: its
	// snapshot history seeds both the used-IRI set and the derivation
	// chain for the new snapshots.
	existing, err := p.loadExisting(stageDir, minter)
	if err != nil {
		return err
	}

	if err := writeTurtle(filepath.Join(stageDir, MetaFileName), metadata); err != nil {
		return err
	}

	subjects := metadata.IRISubjects()
	if len(subjects) == 0 {
		// No metadata at this stage. The absence itself is provenance-worthy,
		// so the folder's object subject still gets a snapshot.
		subject := rdf.IRI(p.baseIRI + "/" + strconv.Itoa(nr))
		p.logger.Debug("No metadata found, snapshotting absence",
			slog.String("path", entry.Path),
			slog.String("subject", subject.Value))
		subjects = []rdf.Term{subject}
	}

	// The snapshot chain is append-only: every existing graph is carried
	// forward, including graphs of subjects absent from the current
	// metadata, so a rewrite never loses history.
	dataset := rdf.NewDataset()
	if existing != nil {
		for _, q := range existing.Quads() {
			dataset.AddQuad(q)
		}
	}

	for _, subject := range subjects {
		graphName := provenance.GraphName(subject)

		var prior *rdf.Term
		if existing != nil && existing.HasGraph(graphName) {
			if latest, ok := provenance.LatestSnapshot(existing.Graph(graphName), subject); ok {
				prior = &latest
			}
		}

		snapshot := minter.Mint(provenance.KindSnapshot, subject.Value+"/prov")
		quads, err := buildSnapshot(provenance.SnapshotRequest{
			Subject:   subject,
			Metadata:  provenance.Extract(metadata, subject),
			Snapshot:  snapshot,
			Timestamp: summary.GeneratedAt,
			Agent:     p.agent,
			Prior:     prior,
			Options:   p.options,
		})
		if err != nil {
			var missing *provenance.MissingAttributionError
			if errors.As(err, &missing) {
				p.logger.Warn("Skipping subject without attribution",
					slog.String("subject", subject.Value))
				summary.Failed = append(summary.Failed, Failure{Entry: entry, Subject: subject.Value, Err: err})
				continue
			}
			return fmt.Errorf("build snapshot for %s: %w", subject.Value, err)
		}

		permitted := []rdf.Term{p.agent}
		if p.options.PrimarySource != "" {
			permitted = append(permitted, rdf.IRI(p.options.PrimarySource))
		}
		_, assembled, err := provenance.Assemble(subject, quads, permitted...)
		if err != nil {
			// Leakage is a data-integrity defect, fatal for the run.
			return fmt.Errorf("assemble provenance for %s: %w", subject.Value, err)
		}

		for _, q := range assembled {
			dataset.AddQuad(q)
		}
		summary.Snapshots++

		if p.publisher != nil {
			if err := p.publisher.PublishGraph(ctx, summary.RunID, subject, graphName, dataset.Graph(graphName).Triples()); err != nil {
				p.logger.Warn("Failed to publish provenance graph",
					slog.String("subject", subject.Value),
					slog.String("error", err.Error()))
			}
		}
	}

	if err := writeNQuads(filepath.Join(stageDir, ProvFileName), dataset); err != nil {
		return err
	}

	summary.Processed++
	p.logger.Info("Processed stage folder",
		slog.String("path", entry.Path),
		slog.Int("metadata_triples", metadata.Len()),
		slog.Int("subjects", len(subjects)))
	return nil
}

// loadExisting reads a previously generated prov.nq, reserving every IRI it
// mentions so new snapshot identifiers never collide with old ones.
func (p *Pipeline) loadExisting(stageDir string, minter *provenance.Minter) (*rdf.Dataset, error) {
	path := filepath.Join(stageDir, ProvFileName)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open existing provenance: %w", err)
	}
	defer f.Close()

	dataset, err := rdf.DecodeNQuads(f)
	if err != nil {
		return nil, fmt.Errorf("parse existing provenance %s: %w", path, err)
	}
	for _, name := range dataset.GraphNames() {
		minter.ReserveGraph(dataset.Graph(name))
	}
	return dataset, nil
}

func writeTurtle(path string, g *rdf.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := rdf.EncodeTurtle(g, f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeNQuads(path string, d *rdf.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := rdf.EncodeNQuads(d, f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
