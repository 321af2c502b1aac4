package provenance

import (
	"fmt"

	"github.com/dharc-org/provgen/rdf"
)

// MissingAttributionError reports a snapshot request without a responsible
// agent. Provenance without attribution is invalid output, not a degraded
// form, so the snapshot is refused. Recoverable per subject at the
// orchestrator boundary.
type MissingAttributionError struct {
	Subject rdf.Term
}

func (e *MissingAttributionError) Error() string {
	return fmt.Sprintf("snapshot of %s requested without a responsible agent", e.Subject)
}

// CrossSubjectLeakageError reports a triple assembled into a subject's named
// graph whose own subject belongs to another entity. This indicates a logic
// defect upstream and aborts the whole run.
type CrossSubjectLeakageError struct {
	Subject   rdf.Term
	Offending rdf.Triple
}

func (e *CrossSubjectLeakageError) Error() string {
	return fmt.Sprintf("triple %s leaked into the named graph of %s", e.Offending, e.Subject)
}

// UnknownStageTagError reports a folder whose stage classification is not
// one of the supported tags. Non-fatal: the folder is skipped with a warning.
type UnknownStageTagError struct {
	Tag    string
	Folder string
}

func (e *UnknownStageTagError) Error() string {
	return fmt.Sprintf("unknown stage tag %q in folder %q", e.Tag, e.Folder)
}
