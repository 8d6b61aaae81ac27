package voicevox

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func engineStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Write([]byte(`"0.22.0"`))
	})
	mux.HandleFunc("/audio_query", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if r.URL.Query().Get("text") == "" {
			http.Error(w, "missing text", http.StatusUnprocessableEntity)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"accent_phrases": [{"moras": []}],
			"speedScale": 1.0,
			"pitchScale": 0.0,
			"intonationScale": 1.0,
			"volumeScale": 1.0,
			"prePhonemeLength": 0.1,
			"postPhonemeLength": 0.1,
			"outputSamplingRate": 24000,
			"outputStereo": false
		}`))
	})
	mux.HandleFunc("/synthesis", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var query map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		if _, ok := query["accent_phrases"]; !ok {
			http.Error(w, "accent phrases dropped", http.StatusUnprocessableEntity)
			return
		}
		w.Header().Set("Content-Type", "audio/wav")
		w.Write([]byte("RIFFwav-bytes"))
	})
	return httptest.NewServer(mux)
}

func TestClientVersion(t *testing.T) {
	srv := engineStub(t)
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	v, err := c.Version(context.Background())
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if v != "0.22.0" {
		t.Errorf("got version %q", v)
	}
}

func TestClientSynthesizeText_RoundTripsAccentPhrases(t *testing.T) {
	srv := engineStub(t)
	defer srv.Close()

	stats := NewSynthStats(time.Hour)
	c := NewClient(srv.URL, time.Second, stats)
	wav, err := c.SynthesizeText(context.Background(), "こんにちは。", 3, QueryOptions{})
	if err != nil {
		t.Fatalf("SynthesizeText: %v", err)
	}
	if !bytes.HasPrefix(wav, []byte("RIFF")) {
		t.Errorf("expected WAV bytes, got %q", wav)
	}
	if stats.Snapshot().Count != 1 {
		t.Error("expected one latency sample recorded")
	}
}

func TestClientRetryableStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	_, err := c.BuildQuery(context.Background(), "テスト", 3)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !IsRetryable(err) {
		t.Errorf("expected a retryable error, got %v", err)
	}
}

func TestClientNonRetryableStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad speaker", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	_, err := c.BuildQuery(context.Background(), "テスト", 999)
	if err == nil {
		t.Fatal("expected an error")
	}
	if IsRetryable(err) {
		t.Errorf("client errors must not be retryable: %v", err)
	}
}

func TestAdjustQuery_TrailingPause(t *testing.T) {
	q := &AudioQuery{PostPhonemeLength: 0.1}
	AdjustQuery(q, "文の終わりです。", QueryOptions{})
	if q.PostPhonemeLength != pauseAfterFullStop {
		t.Errorf("expected full-stop pause, got %f", q.PostPhonemeLength)
	}

	q = &AudioQuery{PostPhonemeLength: 0.1}
	AdjustQuery(q, "途中の区切り、", QueryOptions{})
	if q.PostPhonemeLength != pauseAfterComma {
		t.Errorf("expected comma pause, got %f", q.PostPhonemeLength)
	}

	q = &AudioQuery{PostPhonemeLength: 0.1}
	AdjustQuery(q, "句読点なし", QueryOptions{SpeedScale: 1.2})
	if q.PostPhonemeLength != 0.1 {
		t.Errorf("pause must be untouched without trailing punctuation, got %f", q.PostPhonemeLength)
	}
	if q.SpeedScale != 1.2 {
		t.Errorf("expected speed override, got %f", q.SpeedScale)
	}
}

func TestResolveSpeaker(t *testing.T) {
	id, err := ResolveSpeaker("zundamon")
	if err != nil || id != 3 {
		t.Errorf("got id=%d err=%v", id, err)
	}
	id, err = ResolveSpeaker("")
	if err != nil || id != 3 {
		t.Errorf("default speaker: got id=%d err=%v", id, err)
	}
	id, err = ResolveSpeaker("47")
	if err != nil || id != 47 {
		t.Errorf("numeric style id: got id=%d err=%v", id, err)
	}
	if _, err := ResolveSpeaker("unknown-voice"); err == nil {
		t.Error("expected an error for an unknown name")
	}
}
