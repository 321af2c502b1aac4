package rdf

import "sort"

// Graph is an unordered set of triples indexed by subject. Insertion order
// is preserved for serialization so output stays stable across runs.
type Graph struct {
	prefixes  map[string]string
	triples   []Triple
	seen      map[Triple]struct{}
	bySubject map[Term][]int
	subjects  []Term
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		prefixes:  make(map[string]string),
		seen:      make(map[Triple]struct{}),
		bySubject: make(map[Term][]int),
	}
}

// Bind associates a prefix with a namespace IRI for serialization.
func (g *Graph) Bind(prefix, namespace string) {
	g.prefixes[prefix] = namespace
}

// BindFrom copies all prefix bindings from another graph.
func (g *Graph) BindFrom(other *Graph) {
	for prefix, ns := range other.prefixes {
		g.prefixes[prefix] = ns
	}
}

// Prefixes returns the prefix bindings in sorted prefix order.
func (g *Graph) Prefixes() []Prefix {
	out := make([]Prefix, 0, len(g.prefixes))
	for p, ns := range g.prefixes {
		out = append(out, Prefix{Name: p, Namespace: ns})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Prefix is a namespace binding.
type Prefix struct {
	Name      string
	Namespace string
}

// Namespace returns the namespace bound to a prefix.
func (g *Graph) Namespace(prefix string) (string, bool) {
	ns, ok := g.prefixes[prefix]
	return ns, ok
}

// Add inserts a triple, returning false if it was already present.
func (g *Graph) Add(t Triple) bool {
	if _, ok := g.seen[t]; ok {
		return false
	}
	g.seen[t] = struct{}{}
	if _, ok := g.bySubject[t.Subject]; !ok {
		g.subjects = append(g.subjects, t.Subject)
	}
	g.bySubject[t.Subject] = append(g.bySubject[t.Subject], len(g.triples))
	g.triples = append(g.triples, t)
	return true
}

// Has reports whether the triple is present.
func (g *Graph) Has(t Triple) bool {
	_, ok := g.seen[t]
	return ok
}

// Len returns the number of triples.
func (g *Graph) Len() int { return len(g.triples) }

// Triples returns all triples in insertion order.
func (g *Graph) Triples() []Triple {
	out := make([]Triple, len(g.triples))
	copy(out, g.triples)
	return out
}

// BySubject returns the triples whose subject equals s, in insertion order.
func (g *Graph) BySubject(s Term) []Triple {
	idx := g.bySubject[s]
	out := make([]Triple, 0, len(idx))
	for _, i := range idx {
		out = append(out, g.triples[i])
	}
	return out
}

// Subjects returns the distinct subjects in first-seen order.
func (g *Graph) Subjects() []Term {
	out := make([]Term, len(g.subjects))
	copy(out, g.subjects)
	return out
}

// IRISubjects returns the distinct IRI subjects in first-seen order,
// skipping blank nodes.
func (g *Graph) IRISubjects() []Term {
	out := make([]Term, 0, len(g.subjects))
	for _, s := range g.subjects {
		if s.IsIRI() {
			out = append(out, s)
		}
	}
	return out
}

// Dataset is a collection of named graphs.
type Dataset struct {
	order  []Term
	graphs map[Term]*Graph
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{graphs: make(map[Term]*Graph)}
}

// Graph returns the named graph for the given name, creating it if needed.
func (d *Dataset) Graph(name Term) *Graph {
	if g, ok := d.graphs[name]; ok {
		return g
	}
	g := NewGraph()
	d.order = append(d.order, name)
	d.graphs[name] = g
	return g
}

// HasGraph reports whether a graph with the given name exists.
func (d *Dataset) HasGraph(name Term) bool {
	_, ok := d.graphs[name]
	return ok
}

// GraphNames returns the graph names in first-seen order.
func (d *Dataset) GraphNames() []Term {
	out := make([]Term, len(d.order))
	copy(out, d.order)
	return out
}

// AddQuad inserts a quad into its named graph.
func (d *Dataset) AddQuad(q Quad) bool {
	return d.Graph(q.Graph).Add(q.Triple)
}

// Quads returns all quads, grouped by graph in first-seen order.
func (d *Dataset) Quads() []Quad {
	var out []Quad
	for _, name := range d.order {
		for _, t := range d.graphs[name].triples {
			out = append(out, Quad{Triple: t, Graph: name})
		}
	}
	return out
}

// Len returns the total number of quads across all graphs.
func (d *Dataset) Len() int {
	n := 0
	for _, g := range d.graphs {
		n += g.Len()
	}
	return n
}
