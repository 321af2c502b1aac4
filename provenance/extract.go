// Package provenance implements the snapshot generation engine: per-stage
// metadata extraction from a knowledge graph, deterministic identity
// minting, OCDM snapshot construction, and named-graph assembly.
package provenance

import (
	"fmt"
	"regexp"

	"github.com/dharc-org/provgen/rdf"
	"github.com/dharc-org/provgen/vocabulary/prov"
)

// Extract returns the metadata describing one subject: every triple whose
// subject position equals the given subject, plus a one-hop closure over
// IRI and blank-node objects so the description stays coherent. An absent
// subject yields an empty graph, not an error.
func Extract(g *rdf.Graph, subject rdf.Term) *rdf.Graph {
	out := rdf.NewGraph()
	out.BindFrom(g)
	addWithClosure(g, out, subject)
	return out
}

// addWithClosure copies the subject's triples into out, following object
// references one hop.
func addWithClosure(g, out *rdf.Graph, subject rdf.Term) {
	for _, t := range g.BySubject(subject) {
		out.Add(t)
		if t.Object.IsIRI() || t.Object.IsBlank() {
			for _, t2 := range g.BySubject(t.Object) {
				out.Add(t2)
			}
		}
	}
}

// StageMetadata extracts the subgraph describing object NR at the given
// stage: subjects of the form .../<nr>/<step>/1 for the stage's processing
// steps, plus the object-level subjects .../<nr>/ob<K>/1, each with its
// one-hop closure. Prefix bindings are carried over from the source graph.
func StageMetadata(g *rdf.Graph, nr int, stage prov.Stage) (*rdf.Graph, error) {
	steps := stage.Steps()
	if steps == nil {
		return nil, &UnknownStageTagError{Tag: string(stage)}
	}

	stepRe := regexp.MustCompile(fmt.Sprintf(`/%d/(\d{2})/1$`, nr))
	obRe := regexp.MustCompile(fmt.Sprintf(`/%d/ob\d+/1$`, nr))
	inStage := make(map[string]bool, len(steps))
	for _, s := range steps {
		inStage[s] = true
	}

	out := rdf.NewGraph()
	out.BindFrom(g)

	for _, subject := range g.IRISubjects() {
		if m := stepRe.FindStringSubmatch(subject.Value); m != nil {
			if inStage[m[1]] {
				addWithClosure(g, out, subject)
			}
			continue
		}
		if obRe.MatchString(subject.Value) {
			addWithClosure(g, out, subject)
		}
	}

	return out, nil
}
