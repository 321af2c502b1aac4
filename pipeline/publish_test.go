package pipeline

import (
	"testing"

	"github.com/dharc-org/provgen/rdf"
	"github.com/dharc-org/provgen/vocabulary/prov"
)

func TestTermRecord(t *testing.T) {
	tests := []struct {
		name string
		term rdf.Term
		want TermRecord
	}{
		{
			name: "iri",
			term: rdf.IRI("https://e/obj"),
			want: TermRecord{Value: "https://e/obj", Type: "iri"},
		},
		{
			name: "blank",
			term: rdf.Blank("b1"),
			want: TermRecord{Value: "b1", Type: "blank"},
		},
		{
			name: "plain literal",
			term: rdf.Literal("v"),
			want: TermRecord{Value: "v", Type: "literal"},
		},
		{
			name: "typed literal",
			term: rdf.TypedLiteral("2024-01-01T00:00:00Z", prov.XSDDateTime),
			want: TermRecord{Value: "2024-01-01T00:00:00Z", Type: "literal", Datatype: prov.XSDDateTime},
		},
		{
			name: "language literal",
			term: rdf.LangLiteral("ciao", "it"),
			want: TermRecord{Value: "ciao", Type: "literal", Lang: "it"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := termRecord(tt.term); got != tt.want {
				t.Errorf("termRecord(%v) = %+v, want %+v", tt.term, got, tt.want)
			}
		})
	}
}
