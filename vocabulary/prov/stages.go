package prov

import "strings"

// Stage classifies a digitisation processing phase. Stage tags come from
// folder names in the source hierarchy and select which processing steps of
// an object's metadata belong to the stage output.
type Stage string

const (
	// StageRaw is the raw acquisition stage.
	StageRaw Stage = "raw"
	// StageRawP is the processed raw stage.
	StageRawP Stage = "rawp"
	// StageDCHO is the digital cultural heritage object stage.
	StageDCHO Stage = "dcho"
	// StageDCHOO is the optimized digital cultural heritage object stage.
	StageDCHOO Stage = "dchoo"
)

// stageSteps maps each stage to the processing step identifiers whose
// metadata it covers.
var stageSteps = map[Stage][]string{
	StageRaw:   {"00"},
	StageRawP:  {"00", "01"},
	StageDCHO:  {"00", "01", "02"},
	StageDCHOO: {"00", "01", "02", "03", "04", "05", "06"},
}

// ParseStage normalizes a folder name into a known stage tag.
func ParseStage(name string) (Stage, bool) {
	s := Stage(strings.ToLower(name))
	_, ok := stageSteps[s]
	return s, ok
}

// Steps returns the processing step identifiers covered by the stage, or
// nil for an unknown stage.
func (s Stage) Steps() []string {
	return stageSteps[s]
}

// Known reports whether the stage is one of the supported tags.
func (s Stage) Known() bool {
	_, ok := stageSteps[s]
	return ok
}

// Stages returns the supported stage tags in processing order.
func Stages() []Stage {
	return []Stage{StageRaw, StageRawP, StageDCHO, StageDCHOO}
}
