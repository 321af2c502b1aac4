package sharepoint

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeMarshalOrdering(t *testing.T) {
	n := Node{
		FilesKey: []string{"b.tif", "a.tif"},
		"rawp":   Node{},
		"raw":    Node{FilesKey: []string{"img.cr2"}},
	}
	data, err := json.Marshal(n)
	require.NoError(t, err)

	want := `{"raw":{"_files":["img.cr2"]},"rawp":{},"_files":["b.tif","a.tif"]}`
	assert.Equal(t, want, string(data))
}

// fakeLibrary serves a SharePoint folder listing API over a static tree.
type fakeLibrary struct {
	folders map[string][]string
	files   map[string][]string
}

func (l *fakeLibrary) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		open := strings.Index(path, "('")
		end := strings.LastIndex(path, "')")
		if open < 0 || end < 0 {
			http.NotFound(w, r)
			return
		}
		folder := path[open+2 : end]
		var names []string
		if strings.HasSuffix(path, "/Folders") {
			names = l.folders[folder]
		} else {
			names = l.files[folder]
		}
		results := make([]string, 0, len(names))
		for _, n := range names {
			results = append(results, fmt.Sprintf(`{"Name":%q,"ServerRelativeUrl":%q}`, n, folder+"/"+n))
		}
		fmt.Fprintf(w, `{"d":{"results":[%s]}}`, strings.Join(results, ","))
	})
}

func TestExtractAll(t *testing.T) {
	lib := &fakeLibrary{
		folders: map[string][]string{
			"/sites/lab/Shared Documents/Sala1":                      {"S1-5-manoscritto", "Forms", "_private"},
			"/sites/lab/Shared Documents/Sala1/S1-5-manoscritto":     {"raw"},
			"/sites/lab/Shared Documents/Sala1/S1-5-manoscritto/raw": {},
		},
		files: map[string][]string{
			"/sites/lab/Shared Documents/Sala1/S1-5-manoscritto/raw": {"img2.cr2", "img1.cr2"},
		},
	}
	srv := httptest.NewServer(lib.handler())
	defer srv.Close()

	c := NewClient(srv.URL+"/sites/lab", "f", "r")
	doc, err := NewExtractor(c).ExtractAll(context.Background(), []string{"Sala1"})
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/sites/lab", doc.SiteURL)
	assert.NotEmpty(t, doc.ExtractedAt)

	sala, ok := doc.Structure["Sala1"]
	require.True(t, ok, "missing Sala1 in structure")
	assert.NotContains(t, sala, "Forms", "system folder must be skipped")
	assert.NotContains(t, sala, "_private", "underscore-prefixed folders must be skipped")

	obj, ok := sala["S1-5-manoscritto"].(Node)
	require.True(t, ok, "missing object folder")
	raw, ok := obj["raw"].(Node)
	require.True(t, ok, "missing stage folder")
	files, ok := raw[FilesKey].([]string)
	require.True(t, ok, "missing file listing")
	assert.Equal(t, []string{"img1.cr2", "img2.cr2"}, files, "file names must be sorted")
}
