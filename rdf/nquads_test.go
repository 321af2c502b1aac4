package rdf_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dharc-org/provgen/rdf"
)

func TestDecodeNQuads(t *testing.T) {
	input := `
# provenance history
<http://e/1/00/1/prov/se/1> <http://www.w3.org/ns/prov#specializationOf> <http://e/1/00/1> <http://e/1/00/1/prov/> .
<http://e/1/00/1/prov/se/1> <http://www.w3.org/ns/prov#generatedAtTime> "2024-01-02T03:04:05Z"^^<http://www.w3.org/2001/XMLSchema#dateTime> <http://e/1/00/1/prov/> .
<http://e/s> <http://e/p> "plain" .
<http://e/s> <http://e/p> "ciao"@it .
_:b1 <http://e/p> "x\ny" <http://e/g> .
`
	d, err := rdf.DecodeNQuads(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeNQuads failed: %v", err)
	}
	if d.Len() != 5 {
		t.Fatalf("expected 5 quads, got %d", d.Len())
	}

	prov := d.Graph(rdf.IRI("http://e/1/00/1/prov/"))
	if prov.Len() != 2 {
		t.Errorf("expected 2 triples in provenance graph, got %d", prov.Len())
	}
	want := rdf.Triple{
		Subject:   rdf.IRI("http://e/1/00/1/prov/se/1"),
		Predicate: rdf.IRI("http://www.w3.org/ns/prov#specializationOf"),
		Object:    rdf.IRI("http://e/1/00/1"),
	}
	if !prov.Has(want) {
		t.Errorf("missing specializationOf triple")
	}

	dflt := d.Graph(rdf.DefaultGraph)
	if dflt.Len() != 2 {
		t.Errorf("expected 2 triples in default graph, got %d", dflt.Len())
	}
	if !dflt.Has(rdf.Triple{
		Subject:   rdf.IRI("http://e/s"),
		Predicate: rdf.IRI("http://e/p"),
		Object:    rdf.LangLiteral("ciao", "it"),
	}) {
		t.Errorf("missing language-tagged triple in default graph")
	}

	g := d.Graph(rdf.IRI("http://e/g"))
	triples := g.BySubject(rdf.Blank("b1"))
	if len(triples) != 1 || triples[0].Object.Value != "x\ny" {
		t.Errorf("blank node quad not decoded: %v", triples)
	}
}

func TestDecodeNQuadsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"two terms", `<http://e/s> <http://e/p> .`},
		{"five terms", `<http://e/s> <http://e/p> <http://e/o> <http://e/g> <http://e/x> .`},
		{"no terminator", `<http://e/s> <http://e/p> <http://e/o>`},
		{"literal predicate", `<http://e/s> "p" <http://e/o> .`},
		{"unterminated literal", `<http://e/s> <http://e/p> "open .`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := rdf.DecodeNQuads(strings.NewReader(tt.input)); err == nil {
				t.Errorf("expected error for %q", tt.input)
			}
		})
	}
}

func TestNQuadsRoundTrip(t *testing.T) {
	d := rdf.NewDataset()
	g := rdf.IRI("http://e/obj/prov/")
	d.AddQuad(rdf.Quad{
		Triple: rdf.Triple{
			Subject:   rdf.IRI("http://e/obj/prov/se/1"),
			Predicate: rdf.IRI("http://purl.org/dc/terms/description"),
			Object:    rdf.LangLiteral("Entity <http://e/obj> was created", "en"),
		},
		Graph: g,
	})
	d.AddQuad(rdf.Quad{
		Triple: rdf.Triple{
			Subject:   rdf.IRI("http://e/obj/prov/se/1"),
			Predicate: rdf.IRI("http://e/note"),
			Object:    rdf.Literal("tab\there \"quote\" back\\slash"),
		},
		Graph: g,
	})

	var buf bytes.Buffer
	if err := rdf.EncodeNQuads(d, &buf); err != nil {
		t.Fatalf("EncodeNQuads failed: %v", err)
	}
	back, err := rdf.DecodeNQuads(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("re-parse failed: %v\noutput:\n%s", err, buf.String())
	}
	if back.Len() != d.Len() {
		t.Fatalf("round trip changed quad count: %d != %d", back.Len(), d.Len())
	}
	for _, q := range d.Quads() {
		if !back.Graph(q.Graph).Has(q.Triple) {
			t.Errorf("round trip lost quad %s", q)
		}
	}
}
