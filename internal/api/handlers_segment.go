package api

import (
	"encoding/json"
	"net/http"

	"github.com/nkotake/seion/internal/segmenter"
	"github.com/nkotake/seion/internal/textnorm"
	"github.com/nkotake/seion/internal/voicevox"
)

// segmentRequest is the synchronous single-text path: no pages, no
// boilerplate pass, just normalize and split.
type segmentRequest struct {
	Text      string `json:"text"`
	Strategy  string `json:"strategy,omitempty"`
	MaxLength int    `json:"max_length,omitempty"`
	MinLength int    `json:"min_length,omitempty"`
}

func (s *Server) handleSegment(w http.ResponseWriter, r *http.Request) {
	var req segmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}

	name := req.Strategy
	if name == "" {
		name = s.cfg.SegmentStrategy
	}
	strategy, err := segmenter.ParseStrategy(name)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	segCfg := s.cfg.SegmenterConfig()
	if req.MaxLength > 0 {
		segCfg.MaxLineLength = req.MaxLength
	}
	if req.MinLength > 0 {
		segCfg.MinLineLength = req.MinLength
	}
	seg, err := segmenter.New(strategy, segCfg, s.orchestrator.Tokenizer(), s.log)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	text := textnorm.Clean(req.Text, s.cfg.AggressiveWhitespace)
	chunks := seg.Segment(text)
	if chunks == nil {
		chunks = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"strategy": strategy,
		"chunks":   chunks,
	})
}

func (s *Server) handleSpeakers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"default":  voicevox.DefaultSpeaker,
		"speakers": voicevox.Speakers,
	})
}
