package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nkotake/seion/internal/config"
	"github.com/nkotake/seion/internal/pipeline"
)

func testServer(t *testing.T, apiKey string) (*Server, *pipeline.Orchestrator) {
	t.Helper()
	cfg := config.Load()
	cfg.APIKey = apiKey
	cfg.WorkerCount = 2
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, nil, nil, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, log, cfg), orch
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := testServer(t, "")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("got body %q", rec.Body.String())
	}
}

func TestAuthMiddleware(t *testing.T) {
	srv, _ := testServer(t, "secret-key")

	req := httptest.NewRequest(http.MethodGet, "/api/speakers", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/speakers", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/speakers", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with good token, got %d", rec.Code)
	}
}

func TestAuthDisabledWhenKeyEmpty(t *testing.T) {
	srv, _ := testServer(t, "")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/speakers", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected open access with empty key, got %d", rec.Code)
	}
}

func TestSegmentEndpoint(t *testing.T) {
	srv, _ := testServer(t, "")

	body := `{"text":"これはとても長い文章です、句読点がたくさんあります、読みやすくする必要があります。","max_length":20,"min_length":15}`
	req := httptest.NewRequest(http.MethodPost, "/api/segment", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Strategy string   `json:"strategy"`
		Chunks   []string `json:"chunks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Strategy != "punctuation" {
		t.Errorf("got strategy %q", resp.Strategy)
	}
	if len(resp.Chunks) != 3 {
		t.Errorf("expected 3 chunks, got %v", resp.Chunks)
	}
}

func TestSegmentEndpoint_Validation(t *testing.T) {
	srv, _ := testServer(t, "")

	cases := []string{
		`{}`,
		`{"text":"本文。","strategy":"sentencepiece"}`,
		`not json`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/segment", strings.NewReader(body))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestSpeakersEndpoint(t *testing.T) {
	srv, _ := testServer(t, "")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/speakers", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	var resp struct {
		Default  string         `json:"default"`
		Speakers map[string]int `json:"speakers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Default != "zundamon" || resp.Speakers["zundamon"] != 3 {
		t.Errorf("got %+v", resp)
	}
}

func TestSynthStatsUnavailableWithoutEngine(t *testing.T) {
	srv, _ := testServer(t, "")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats/synth", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without engine, got %d", rec.Code)
	}
}

func multipartUpload(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestIngestAndStatus(t *testing.T) {
	srv, orch := testServer(t, "")

	body, contentType := multipartUpload(t, "note.txt", "今日は晴れです。\n散歩に出かけました。", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("got status %d: %s", rec.Code, rec.Body.String())
	}

	var accepted struct {
		JobID   string `json:"job_id"`
		PollURL string `json:"poll_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if accepted.JobID == "" || !strings.Contains(accepted.PollURL, accepted.JobID) {
		t.Fatalf("got %+v", accepted)
	}

	deadline := time.After(10 * time.Second)
	for {
		status := orch.GetJob(accepted.JobID).Snapshot().Status
		if status == pipeline.StatusCompleted {
			break
		}
		if status == pipeline.StatusFailed {
			t.Fatalf("job failed: %v", orch.GetJob(accepted.JobID).Snapshot().Progress.Errors)
		}
		select {
		case <-deadline:
			t.Fatal("job did not complete in time")
		case <-time.After(20 * time.Millisecond):
		}
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, accepted.PollURL, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status endpoint: got %d", rec.Code)
	}
	var snap pipeline.JobSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Status != pipeline.StatusCompleted {
		t.Errorf("got status %s", snap.Status)
	}
	if len(snap.Results) == 0 || len(snap.Results[0].Chunks) == 0 {
		t.Errorf("expected chunks in results, got %+v", snap.Results)
	}
}

func TestIngestRejectsUnsupportedType(t *testing.T) {
	srv, _ := testServer(t, "")

	body, contentType := multipartUpload(t, "sheet.xlsx", "data", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestIngestRejectsBadStrategy(t *testing.T) {
	srv, _ := testServer(t, "")

	body, contentType := multipartUpload(t, "note.txt", "本文。", map[string]string{"strategy": "sentencepiece"})
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}
