package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/dharc-org/provgen/rdf"
)

// Publisher publishes generated provenance graphs to NATS so downstream
// consumers can ingest snapshot history without re-reading output files.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// NewPublisher connects to NATS. The returned publisher owns the
// connection; call Close when done.
func NewPublisher(url, subject string) (*Publisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &Publisher{conn: conn, subject: subject}, nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
	}
}

// TermRecord is the wire form of an RDF term.
type TermRecord struct {
	Value    string `json:"value"`
	Type     string `json:"type"` // iri, blank, literal
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"lang,omitempty"`
}

// TripleRecord is the wire form of one provenance triple.
type TripleRecord struct {
	Subject   TermRecord `json:"subject"`
	Predicate TermRecord `json:"predicate"`
	Object    TermRecord `json:"object"`
}

// GraphMessage is the message published per subject graph.
type GraphMessage struct {
	RunID       string         `json:"run_id"`
	Subject     string         `json:"subject"`
	Graph       string         `json:"graph"`
	PublishedAt time.Time      `json:"published_at"`
	Triples     []TripleRecord `json:"triples"`
}

// PublishGraph publishes one subject's provenance graph.
func (p *Publisher) PublishGraph(ctx context.Context, runID string, subject, graph rdf.Term, triples []rdf.Triple) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := GraphMessage{
		RunID:       runID,
		Subject:     subject.Value,
		Graph:       graph.Value,
		PublishedAt: time.Now().UTC(),
		Triples:     make([]TripleRecord, 0, len(triples)),
	}
	for _, t := range triples {
		msg.Triples = append(msg.Triples, TripleRecord{
			Subject:   termRecord(t.Subject),
			Predicate: termRecord(t.Predicate),
			Object:    termRecord(t.Object),
		})
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal graph message: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish graph message: %w", err)
	}
	return nil
}

func termRecord(t rdf.Term) TermRecord {
	r := TermRecord{Value: t.Value}
	switch t.Kind {
	case rdf.KindIRI:
		r.Type = "iri"
	case rdf.KindBlank:
		r.Type = "blank"
	default:
		r.Type = "literal"
		r.Datatype = t.Datatype
		r.Lang = t.Lang
	}
	return r
}
