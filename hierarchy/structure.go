package hierarchy

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sort"
)

// FilesKey is the structure-document key holding a folder's file listing
// rather than a subfolder.
const FilesKey = "_files"

// StructureDocument is the JSON document produced by the SharePoint
// structure extraction: sala → folder → stage → nested content, with
// "_files" arrays interleaved at any level.
type StructureDocument struct {
	SiteURL     string                     `json:"site_url"`
	ExtractedAt string                     `json:"extracted_at"`
	Structure   map[string]json.RawMessage `json:"structure"`
}

// LoadStructure reads a structure document from disk.
func LoadStructure(path string) (*StructureDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read structure file: %w", err)
	}
	var doc StructureDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse structure file %s: %w", path, err)
	}
	return &doc, nil
}

// StructureSource yields stage folders from a structure document.
type StructureSource struct {
	doc *StructureDocument
}

// NewStructureSource wraps a loaded structure document.
func NewStructureSource(doc *StructureDocument) *StructureSource {
	return &StructureSource{doc: doc}
}

// Entries enumerates every sala/folder/stage combination in sorted order,
// skipping "_files" listings and anything that is not a folder object.
func (s *StructureSource) Entries() ([]Entry, error) {
	var entries []Entry
	for _, sala := range sortedKeys(s.doc.Structure) {
		folders, ok := childFolders(s.doc.Structure[sala])
		if !ok {
			return nil, fmt.Errorf("structure: sala %q is not a folder object", sala)
		}
		for _, folder := range sortedKeys(folders) {
			stages, ok := childFolders(folders[folder])
			if !ok {
				continue
			}
			for _, stage := range sortedKeys(stages) {
				entries = append(entries, Entry{
					Sala:      sala,
					Folder:    folder,
					StageName: stage,
					Path:      path.Join(sala, folder, stage),
				})
			}
		}
	}
	return entries, nil
}

// childFolders decodes one structure level, dropping the "_files" listing.
func childFolders(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	var level map[string]json.RawMessage
	if err := json.Unmarshal(raw, &level); err != nil {
		return nil, false
	}
	delete(level, FilesKey)
	return level, true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
