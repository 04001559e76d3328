package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/Yuki33825/x-music-bar/internal/channel"
	"github.com/Yuki33825/x-music-bar/internal/config"
	"github.com/Yuki33825/x-music-bar/internal/recipe"
	"github.com/Yuki33825/x-music-bar/internal/relay"
)

// VectorHandler is the input surface's endpoint: it stamps and publishes the
// shared record, and echoes back the recipe so the writing client can render
// locally without waiting for the round trip.
type VectorHandler struct {
	channel channel.Client
	relay   *relay.Relay
	cfg     *config.Config
}

func NewVectorHandler(ch channel.Client, rel *relay.Relay, cfg *config.Config) *VectorHandler {
	return &VectorHandler{channel: ch, relay: rel, cfg: cfg}
}

type WriteVectorResponse struct {
	Record channel.VectorRecord `json:"record"`
	Recipe recipe.Result        `json:"recipe"`
}

func (h *VectorHandler) Write(w http.ResponseWriter, r *http.Request) {
	var d recipe.DisplayVector
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	// Out-of-range components are accepted as-is; the record carries what
	// the client sent and every reader clamps in engine domain.
	writerID := r.Header.Get("X-Client-ID")
	if writerID == "" {
		writerID = uuid.NewString()
	}
	rec := channel.NewVectorRecord(d, writerID)

	if err := h.channel.Write(r.Context(), h.cfg.Channel.Key, rec); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, WriteVectorResponse{
		Record: rec,
		Recipe: h.relay.Engine().Compute(recipe.ToEngineVector(d)),
	})
}

func (h *VectorHandler) Get(w http.ResponseWriter, r *http.Request) {
	last, ok := h.relay.Last()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no vector written yet"})
		return
	}
	writeJSON(w, http.StatusOK, last.Record)
}
