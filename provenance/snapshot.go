package provenance

import (
	"fmt"
	"strings"
	"time"

	"github.com/dharc-org/provgen/rdf"
	"github.com/dharc-org/provgen/vocabulary/prov"
)

// Options selects the optional annotation triples a snapshot carries beyond
// the core OCDM set.
type Options struct {
	// PrimarySource, when set, adds prov:hadPrimarySource.
	PrimarySource string
	// AssertEntityType adds rdf:type prov:Entity.
	AssertEntityType bool
	// Describe adds a dcterms:description stating the entity was created.
	Describe bool
}

// SnapshotRequest carries the inputs for one snapshot construction. The
// snapshot IRI is pre-minted and passed in so the construction itself is a
// pure function of its inputs.
type SnapshotRequest struct {
	// Subject is the entity the snapshot captures.
	Subject rdf.Term
	// Metadata is the subject's extracted stage metadata. It may be empty:
	// "no data found at this stage" is itself provenance-worthy.
	Metadata *rdf.Graph
	// Snapshot is the minted snapshot entity IRI.
	Snapshot rdf.Term
	// Timestamp is the logical generation time (stored UTC, second precision).
	Timestamp time.Time
	// Agent is the responsible agent IRI. Required.
	Agent rdf.Term
	// Prior is the immediately preceding snapshot of the subject, if any.
	Prior *rdf.Term
	// Options selects optional annotation triples.
	Options Options
}

// BuildSnapshot constructs the OCDM triple set for one snapshot and places
// every triple in the subject's named graph. Given identical inputs the
// output is identical: nothing here reads clocks, counters, or globals.
func BuildSnapshot(req SnapshotRequest) ([]rdf.Quad, error) {
	if req.Agent.Value == "" {
		return nil, &MissingAttributionError{Subject: req.Subject}
	}

	graph := GraphName(req.Subject)
	ts := req.Timestamp.UTC().Truncate(time.Second).Format(time.RFC3339)

	quads := []rdf.Quad{
		quad(req.Snapshot, rdf.IRI(prov.SpecializationOf), req.Subject, graph),
		quad(req.Snapshot, rdf.IRI(prov.GeneratedAtTime), rdf.TypedLiteral(ts, prov.XSDDateTime), graph),
		quad(req.Snapshot, rdf.IRI(prov.WasAttributedTo), req.Agent, graph),
	}
	if req.Prior != nil {
		quads = append(quads, quad(req.Snapshot, rdf.IRI(prov.WasDerivedFrom), *req.Prior, graph))
	}
	if req.Options.AssertEntityType {
		quads = append(quads, quad(req.Snapshot, rdf.IRI(prov.RDFType), rdf.IRI(prov.Entity), graph))
	}
	if req.Options.PrimarySource != "" {
		quads = append(quads, quad(req.Snapshot, rdf.IRI(prov.HadPrimarySource), rdf.IRI(req.Options.PrimarySource), graph))
	}
	if req.Options.Describe {
		desc := fmt.Sprintf("Entity <%s> was created", req.Subject.Value)
		quads = append(quads, quad(req.Snapshot, rdf.IRI(prov.Description), rdf.LangLiteral(desc, "en"), graph))
	}

	return quads, nil
}

func quad(s, p, o, g rdf.Term) rdf.Quad {
	return rdf.Quad{Triple: rdf.Triple{Subject: s, Predicate: p, Object: o}, Graph: g}
}

// GraphName derives the named graph IRI for a subject's provenance. The
// derivation is stable: re-running against the same subject always targets
// the same graph name.
func GraphName(subject rdf.Term) rdf.Term {
	return rdf.IRI(subject.Value + "/prov/")
}

// LatestSnapshot finds the most recent snapshot of the subject in an
// existing provenance graph, ordering by generatedAtTime. When two
// snapshots share a timestamp the lexicographically greater IRI wins; the
// tie-break is arbitrary but deterministic.
func LatestSnapshot(g *rdf.Graph, subject rdf.Term) (rdf.Term, bool) {
	specialization := rdf.IRI(prov.SpecializationOf)
	generated := rdf.IRI(prov.GeneratedAtTime)

	isSnapshot := func(s rdf.Term) bool {
		for _, t := range g.BySubject(s) {
			if t.Predicate == specialization && t.Object == subject {
				return true
			}
		}
		// Legacy graphs carry no specializationOf triple; fall back to the
		// IRI pattern.
		return strings.HasPrefix(s.Value, subject.Value+"/prov/se/")
	}

	var (
		best     rdf.Term
		bestTime time.Time
		found    bool
	)
	for _, s := range g.IRISubjects() {
		if !isSnapshot(s) {
			continue
		}
		for _, t := range g.BySubject(s) {
			if t.Predicate != generated || !t.Object.IsLiteral() {
				continue
			}
			at, err := time.Parse(time.RFC3339, t.Object.Value)
			if err != nil {
				continue
			}
			switch {
			case !found, at.After(bestTime):
				best, bestTime, found = s, at, true
			case at.Equal(bestTime) && s.Value > best.Value:
				best = s
			}
		}
	}
	return best, found
}
