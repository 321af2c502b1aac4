package provenance

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dharc-org/provgen/rdf"
)

// Kind tags the category of identifier a Minter allocates.
type Kind string

const (
	// KindSnapshot mints snapshot entity IRIs (<prefix>/se/<n>).
	KindSnapshot Kind = "snapshot"
	// KindAgent mints responsible-agent IRIs (<prefix>/agent/<n>).
	KindAgent Kind = "agent"
)

// segment returns the path segment for the kind.
func (k Kind) segment() string {
	if k == KindAgent {
		return "agent"
	}
	return "se"
}

// Minter allocates IRIs that are guaranteed not to collide with any
// identifier already in use. State is scoped to one run: counters start at
// zero and the used set is seeded from the knowledge graph and any
// previously generated provenance. Safe for concurrent use; the mutex is
// the single synchronization boundary a parallel orchestrator needs.
type Minter struct {
	mu       sync.Mutex
	used     map[string]struct{}
	counters map[string]int
}

// NewMinter creates a minter with an empty used set.
func NewMinter() *Minter {
	return &Minter{
		used:     make(map[string]struct{}),
		counters: make(map[string]int),
	}
}

// Reserve marks an IRI as in use so it can never be minted.
func (m *Minter) Reserve(iri string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.used[iri] = struct{}{}
}

// ReserveGraph reserves every IRI appearing in subject or object position
// of the graph.
func (m *Minter) ReserveGraph(g *rdf.Graph) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range g.Triples() {
		if t.Subject.IsIRI() {
			m.used[t.Subject.Value] = struct{}{}
		}
		if t.Object.IsIRI() {
			m.used[t.Object.Value] = struct{}{}
		}
	}
}

// Mint returns a fresh IRI of the given kind under the prefix. The counter
// advances past any reserved candidate, so termination is guaranteed: the
// counter space is unbounded and the used set is finite.
func (m *Minter) Mint(kind Kind, prefix string) rdf.Term {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix = strings.TrimSuffix(prefix, "/")
	key := prefix + "|" + string(kind)
	for {
		m.counters[key]++
		candidate := fmt.Sprintf("%s/%s/%d", prefix, kind.segment(), m.counters[key])
		if _, taken := m.used[candidate]; !taken {
			m.used[candidate] = struct{}{}
			return rdf.IRI(candidate)
		}
	}
}
