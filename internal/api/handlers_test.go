package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"docview/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		Port:                "8091",
		DefaultBudget:       15000,
		DefaultContextLines: 2,
		LoadTimeout:         5 * time.Second,
		MaxConcurrentLoads:  2,
		MaxFileBytes:        1 << 20,
		DocTTL:              time.Hour,
	}
}

func newTestServer(t *testing.T, cfg config.Config) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	ts := httptest.NewServer(NewServer(log, cfg))
	t.Cleanup(ts.Close)
	return ts
}

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// loadAndWait posts a load request and polls until the document is
// ready or the deadline passes.
func loadAndWait(t *testing.T, ts *httptest.Server, path string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"path": path})
	resp, err := http.Post(ts.URL+"/api/documents", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("load request: %v", err)
	}
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}
	var loaded struct {
		DocID  string `json:"doc_id"`
		Status string `json:"status"`
	}
	decodeBody(t, resp, &loaded)
	if loaded.DocID == "" || loaded.Status != "loading" {
		t.Fatalf("unexpected load response %+v", loaded)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(ts.URL + "/api/documents/" + loaded.DocID)
		if err != nil {
			t.Fatalf("status request: %v", err)
		}
		var status struct {
			Document EntrySnapshot `json:"document"`
		}
		decodeBody(t, resp, &status)
		switch status.Document.Status {
		case StatusReady:
			return loaded.DocID
		case StatusFailed:
			t.Fatalf("load failed: %s: %s", status.Document.ErrKind, status.Document.ErrHint)
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("document never became ready")
	return ""
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, testConfig())

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestLoadAndQueryLifecycle(t *testing.T) {
	ts := newTestServer(t, testConfig())
	path := writeDoc(t, "contract.md",
		"# Overview\nThis agreement covers payment.\n## Payment Terms\nNet 30 days.\npayment is due monthly\n# Closing\nSigned by both parties.\n")

	docID := loadAndWait(t, ts, path)

	// Status includes document info once ready.
	resp, err := http.Get(ts.URL + "/api/documents/" + docID)
	if err != nil {
		t.Fatalf("status request: %v", err)
	}
	var status struct {
		Document EntrySnapshot  `json:"document"`
		Info     map[string]any `json:"info"`
	}
	decodeBody(t, resp, &status)
	if status.Info["line_count"] != float64(7) {
		t.Errorf("expected 7 lines in info, got %v", status.Info["line_count"])
	}

	// TOC.
	resp, err = http.Get(ts.URL + "/api/documents/" + docID + "/toc")
	if err != nil {
		t.Fatalf("toc request: %v", err)
	}
	var toc struct {
		Headings []map[string]any `json:"headings"`
	}
	decodeBody(t, resp, &toc)
	if len(toc.Headings) != 3 {
		t.Fatalf("expected 3 headings, got %d", len(toc.Headings))
	}
	if toc.Headings[1]["text"] != "Payment Terms" {
		t.Errorf("unexpected second heading %v", toc.Headings[1])
	}

	// Search.
	resp, err = http.Get(ts.URL + "/api/documents/" + docID + "/search?q=payment&context=0")
	if err != nil {
		t.Fatalf("search request: %v", err)
	}
	var search struct {
		MatchCount int  `json:"match_count"`
		Truncated  bool `json:"truncated"`
	}
	decodeBody(t, resp, &search)
	if search.MatchCount != 3 || search.Truncated {
		t.Errorf("unexpected search result %+v", search)
	}

	// Slice.
	resp, err = http.Get(ts.URL + "/api/documents/" + docID + "/slice?range=3-4")
	if err != nil {
		t.Fatalf("slice request: %v", err)
	}
	var slice struct {
		StartLine int    `json:"start_line"`
		EndLine   int    `json:"end_line"`
		Text      string `json:"text"`
	}
	decodeBody(t, resp, &slice)
	if slice.StartLine != 3 || slice.EndLine != 4 || slice.Text != "## Payment Terms\nNet 30 days." {
		t.Errorf("unexpected slice %+v", slice)
	}

	// Section lookup.
	resp, err = http.Get(ts.URL + "/api/documents/" + docID + "/section?name=payment+terms")
	if err != nil {
		t.Fatalf("section request: %v", err)
	}
	var section struct {
		Heading string  `json:"heading"`
		Score   float64 `json:"score"`
	}
	decodeBody(t, resp, &section)
	if section.Heading != "Payment Terms" || section.Score != 1 {
		t.Errorf("unexpected section %+v", section)
	}

	// Op stats picked up the queries.
	resp, err = http.Get(ts.URL + "/api/stats/ops")
	if err != nil {
		t.Fatalf("stats request: %v", err)
	}
	var stats struct {
		Stats map[string]StatsSnapshot `json:"stats"`
	}
	decodeBody(t, resp, &stats)
	for _, op := range []string{"load", "search", "slice", "section"} {
		if stats.Stats[op].Count == 0 {
			t.Errorf("expected recorded samples for %s", op)
		}
	}

	// Unload.
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/documents/"+docID, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("unload request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on unload, got %d", resp.StatusCode)
	}
	resp, err = http.Get(ts.URL + "/api/documents/" + docID + "/toc")
	if err != nil {
		t.Fatalf("toc request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after unload, got %d", resp.StatusCode)
	}
}

func TestQueryErrorMapping(t *testing.T) {
	ts := newTestServer(t, testConfig())
	path := writeDoc(t, "doc.txt", "line one\nline two\n")
	docID := loadAndWait(t, ts, path)

	cases := []struct {
		name   string
		url    string
		status int
		kind   string
	}{
		{"invalid range", "/slice?range=abc", http.StatusBadRequest, "invalid_range"},
		{"invalid regex", "/regex?pattern=%5Bunclosed", http.StatusBadRequest, "invalid_regex"},
		{"section not found", "/section?name=nothing+here", http.StatusNotFound, "section_not_found"},
		{"missing param", "/search", http.StatusBadRequest, "bad_request"},
	}
	for _, tc := range cases {
		resp, err := http.Get(ts.URL + "/api/documents/" + docID + tc.url)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		var body struct {
			Error struct {
				Kind string `json:"kind"`
			} `json:"error"`
		}
		status := resp.StatusCode
		decodeBody(t, resp, &body)
		if status != tc.status {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.status, status)
		}
		if body.Error.Kind != tc.kind {
			t.Errorf("%s: expected kind %s, got %s", tc.name, tc.kind, body.Error.Kind)
		}
	}
}

func TestLoadRejectsMissingAndOversizedFiles(t *testing.T) {
	cfg := testConfig()
	cfg.MaxFileBytes = 10
	ts := newTestServer(t, cfg)

	body, _ := json.Marshal(map[string]string{"path": "/nonexistent/file.txt"})
	resp, err := http.Post(ts.URL+"/api/documents", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("load request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for a missing file, got %d", resp.StatusCode)
	}

	path := writeDoc(t, "big.txt", "this file is larger than ten bytes\n")
	body, _ = json.Marshal(map[string]string{"path": path})
	resp, err = http.Post(ts.URL+"/api/documents", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("load request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 for an oversized file, got %d", resp.StatusCode)
	}
}

func TestFailedLoadSurfacesErrorKind(t *testing.T) {
	ts := newTestServer(t, testConfig())
	path := writeDoc(t, "legacy.doc", "old word binary")

	body, _ := json.Marshal(map[string]string{"path": path})
	resp, err := http.Post(ts.URL+"/api/documents", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("load request: %v", err)
	}
	var loaded struct {
		DocID string `json:"doc_id"`
	}
	decodeBody(t, resp, &loaded)

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get(ts.URL + "/api/documents/" + loaded.DocID)
		if err != nil {
			t.Fatalf("status request: %v", err)
		}
		var status struct {
			Document EntrySnapshot `json:"document"`
		}
		decodeBody(t, resp, &status)
		if status.Document.Status == StatusFailed {
			if status.Document.ErrKind != "unsupported_format" {
				t.Fatalf("expected unsupported_format, got %s", status.Document.ErrKind)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("load never failed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Queries against a failed document report the stored kind with 409.
	resp, err = http.Get(ts.URL + "/api/documents/" + loaded.DocID + "/toc")
	if err != nil {
		t.Fatalf("toc request: %v", err)
	}
	status := resp.StatusCode
	var qerr struct {
		Error struct {
			Kind string `json:"kind"`
		} `json:"error"`
	}
	decodeBody(t, resp, &qerr)
	if status != http.StatusConflict || qerr.Error.Kind != "unsupported_format" {
		t.Fatalf("expected 409 unsupported_format, got %d %s", status, qerr.Error.Kind)
	}
}

func TestBearerAuth(t *testing.T) {
	cfg := testConfig()
	cfg.APIKey = "secret-token"
	ts := newTestServer(t, cfg)

	// Health stays public.
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on health, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/documents")
	if err != nil {
		t.Fatalf("list request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/documents", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("list request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 with a bad token, got %d", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodGet, ts.URL+"/api/documents", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("list request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with the right token, got %d", resp.StatusCode)
	}
}

func TestListDocuments(t *testing.T) {
	ts := newTestServer(t, testConfig())
	for i := 0; i < 3; i++ {
		path := writeDoc(t, fmt.Sprintf("doc%d.txt", i), "some text\n")
		loadAndWait(t, ts, path)
	}

	resp, err := http.Get(ts.URL + "/api/documents")
	if err != nil {
		t.Fatalf("list request: %v", err)
	}
	var list struct {
		Documents []EntrySnapshot `json:"documents"`
	}
	decodeBody(t, resp, &list)
	if len(list.Documents) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(list.Documents))
	}
	for _, d := range list.Documents {
		if d.Status != StatusReady {
			t.Errorf("expected ready, got %s for %s", d.Status, d.ID)
		}
	}
}
