package sharepoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// FilesKey is the node key under which a folder's files are listed.
const FilesKey = "_files"

// Node is one folder in the extracted structure: subfolder names map to
// child Nodes, and FilesKey maps to a sorted []string of file names.
type Node map[string]any

// MarshalJSON emits keys in sorted order with FilesKey last, matching the
// canonical structure-document layout.
func (n Node) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(n))
	for k := range n {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if (keys[i] == FilesKey) != (keys[j] == FilesKey) {
			return keys[j] == FilesKey
		}
		return keys[i] < keys[j]
	})

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		valJSON, err := json.Marshal(n[k])
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Document is the structure document written for the generation pipeline.
type Document struct {
	SiteURL     string          `json:"site_url"`
	ExtractedAt string          `json:"extracted_at"`
	Structure   map[string]Node `json:"structure"`
}

// Extractor walks a document library and builds the folder structure.
type Extractor struct {
	client *Client
	logger *slog.Logger
}

// NewExtractor creates an extractor over the given client.
func NewExtractor(client *Client) *Extractor {
	return &Extractor{client: client, logger: client.logger}
}

// ExtractAll walks each sala folder under the site's Shared Documents
// library sequentially and returns the assembled document.
func (e *Extractor) ExtractAll(ctx context.Context, saleNames []string) (*Document, error) {
	docsFolder := strings.TrimSuffix(e.client.SiteRelativeURL(), "/") + "/Shared Documents"

	structure := make(map[string]Node, len(saleNames))
	for _, sala := range saleNames {
		e.logger.Info("Extracting sala structure", slog.String("sala", sala))
		node, err := e.folderStructure(ctx, docsFolder+"/"+sala, sala, 0)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", sala, err)
		}
		structure[sala] = node
	}

	return &Document{
		SiteURL:     e.client.siteURL,
		ExtractedAt: time.Now().UTC().Format(time.RFC3339),
		Structure:   structure,
	}, nil
}

// folderStructure recursively collects subfolders and files. System
// folders (leading underscore, "Forms") are skipped.
func (e *Extractor) folderStructure(ctx context.Context, folderPath, sala string, depth int) (Node, error) {
	if depth <= 1 {
		e.logger.Debug("Walking folder",
			slog.String("sala", sala),
			slog.String("path", folderPath))
	}

	folders, files, err := e.client.FolderContents(ctx, folderPath)
	if err != nil {
		return nil, err
	}

	node := make(Node)
	for _, folder := range folders {
		if strings.HasPrefix(folder.Name, "_") || folder.Name == "Forms" {
			continue
		}
		child, err := e.folderStructure(ctx, folder.ServerRelativeURL, sala, depth+1)
		if err != nil {
			return nil, err
		}
		node[folder.Name] = child
	}

	if len(files) > 0 {
		names := make([]string, 0, len(files))
		for _, f := range files {
			names = append(names, f.Name)
		}
		sort.Strings(names)
		node[FilesKey] = names
	}

	return node, nil
}
