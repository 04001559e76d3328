package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Yuki33825/x-music-bar/internal/relay"
)

// StreamHandler pushes relay updates to display surfaces over Server-Sent
// Events. The last update is sent immediately on connect so a display that
// reconnects mid-show catches up without waiting for the next drag.
type StreamHandler struct {
	relay  *relay.Relay
	logger *slog.Logger
}

func NewStreamHandler(rel *relay.Relay, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{relay: rel, logger: logger}
}

func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	id, updates, cancel := h.relay.Subscribe()
	defer cancel()
	h.logger.Info("display connected", "subscriber", id)
	defer h.logger.Info("display disconnected", "subscriber", id)

	if last, ok := h.relay.Last(); ok {
		writeEvent(w, last)
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case upd, open := <-updates:
			if !open {
				return
			}
			writeEvent(w, upd)
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, upd relay.Update) {
	payload, err := json.Marshal(upd)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
}
