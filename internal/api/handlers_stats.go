package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleSynthStats(w http.ResponseWriter, r *http.Request) {
	voice := s.orchestrator.VoiceClient()
	if voice == nil || voice.Stats() == nil {
		jsonError(w, "synthesis stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"stats":       voice.Stats().Snapshot(),
	})
}
