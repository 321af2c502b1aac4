// Package hierarchy abstracts the folder hierarchy that drives provenance
// generation. A Source yields one Entry per stage folder regardless of
// where the hierarchy came from: a live filesystem scan or the structure
// document produced by the SharePoint extractor.
package hierarchy

import (
	"fmt"
	"regexp"
	"strconv"
)

// Entry identifies one stage folder in the hierarchy. StageName is the raw
// folder name; classification and NR extraction happen at the orchestrator
// boundary so skip-and-warn policy lives in one place.
type Entry struct {
	Sala      string
	Folder    string
	StageName string
	Path      string // hierarchy-relative path sala/folder/stage
}

// Source enumerates stage folders.
type Source interface {
	Entries() ([]Entry, error)
}

// Folder names follow S<sala>-<NR>-<name>; NR identifies the object in the
// knowledge graph.
var nrPattern = regexp.MustCompile(`^S\d+-(\d+)-`)

// ExtractNR parses the object number from a folder name.
func ExtractNR(folderName string) (int, error) {
	m := nrPattern.FindStringSubmatch(folderName)
	if m == nil {
		return 0, fmt.Errorf("cannot extract NR from folder name: %s", folderName)
	}
	nr, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("cannot extract NR from folder name: %s", folderName)
	}
	return nr, nil
}
