package provenance

import (
	"strings"

	"github.com/dharc-org/provgen/rdf"
)

// Assemble finalizes the provenance quads for one subject: every quad is
// rewritten to carry the subject's named graph, and the graph-isolation
// invariant is enforced. A quad whose own subject is neither the declared
// subject, one of its snapshot entities, nor a permitted reference (agents,
// primary sources) indicates an upstream logic defect and yields a
// CrossSubjectLeakageError.
func Assemble(subject rdf.Term, quads []rdf.Quad, permitted ...rdf.Term) (rdf.Term, []rdf.Quad, error) {
	graph := GraphName(subject)

	allowed := make(map[rdf.Term]struct{}, len(permitted)+1)
	allowed[subject] = struct{}{}
	for _, p := range permitted {
		allowed[p] = struct{}{}
	}

	out := make([]rdf.Quad, 0, len(quads))
	for _, q := range quads {
		if _, ok := allowed[q.Subject]; !ok && !ownsSnapshot(subject, q.Subject) {
			return rdf.Term{}, nil, &CrossSubjectLeakageError{Subject: subject, Offending: q.Triple}
		}
		q.Graph = graph
		out = append(out, q)
	}
	return graph, out, nil
}

// ownsSnapshot reports whether candidate is a snapshot or agent entity
// minted under the subject's provenance namespace.
func ownsSnapshot(subject, candidate rdf.Term) bool {
	return candidate.IsIRI() && strings.HasPrefix(candidate.Value, subject.Value+"/prov/")
}
