package sharepoint

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func listBody(names ...string) string {
	results := ""
	for i, n := range names {
		if i > 0 {
			results += ","
		}
		results += fmt.Sprintf(`{"Name":%q,"ServerRelativeUrl":"/sites/lab/Shared Documents/%s"}`, n, n)
	}
	return `{"d":{"results":[` + results + `]}}`
}

func TestFolderContents(t *testing.T) {
	var gotCookie, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotAccept = r.Header.Get("Accept")
		switch {
		case r.URL.Path == "/_api/web/GetFolderByServerRelativeUrl('/sites/lab/Shared Documents/Sala1')/Folders":
			fmt.Fprint(w, listBody("S1-5-manoscritto", "Forms"))
		case r.URL.Path == "/_api/web/GetFolderByServerRelativeUrl('/sites/lab/Shared Documents/Sala1')/Files":
			fmt.Fprint(w, listBody("readme.txt"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "fed-token", "rtfa-token")
	folders, files, err := c.FolderContents(context.Background(), "/sites/lab/Shared Documents/Sala1")
	if err != nil {
		t.Fatalf("FolderContents failed: %v", err)
	}

	if gotCookie != "FedAuth=fed-token; rtFa=rtfa-token" {
		t.Errorf("cookie header = %q", gotCookie)
	}
	if gotAccept != "application/json;odata=verbose" {
		t.Errorf("accept header = %q", gotAccept)
	}
	if len(folders) != 2 || folders[0].Name != "S1-5-manoscritto" {
		t.Errorf("folders = %+v", folders)
	}
	if len(files) != 1 || files[0].Name != "readme.txt" {
		t.Errorf("files = %+v", files)
	}
}

func TestGetRetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, listBody("Sala1"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "f", "r",
		WithBackoff(func(int) time.Duration { return 0 }))
	items, err := c.list(context.Background(), srv.URL+"/_api/web/anything")
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
	if len(items) != 1 || items[0].Name != "Sala1" {
		t.Errorf("items = %+v", items)
	}
}

func TestGetExhaustsRetryBudget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "f", "r",
		WithMaxRetries(2),
		WithBackoff(func(int) time.Duration { return 0 }))
	if _, err := c.get(context.Background(), srv.URL+"/x"); err == nil {
		t.Errorf("expected error after exhausting retries")
	}
}

func TestGetFailsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "f", "r")
	if _, err := c.get(context.Background(), srv.URL+"/x"); err == nil {
		t.Errorf("expected error for 403 response")
	}
}

func TestSiteRelativeURL(t *testing.T) {
	tests := []struct {
		siteURL string
		want    string
	}{
		{"https://example.sharepoint.com/sites/lab", "/sites/lab"},
		{"https://example.sharepoint.com/sites/lab/", "/sites/lab"},
		{"https://example.sharepoint.com", "/"},
	}
	for _, tt := range tests {
		c := NewClient(tt.siteURL, "f", "r")
		if got := c.SiteRelativeURL(); got != tt.want {
			t.Errorf("SiteRelativeURL(%q) = %q, want %q", tt.siteURL, got, tt.want)
		}
	}
}
