package api

import (
	"encoding/json"
	"net/http"

	"github.com/Yuki33825/x-music-bar/internal/recipe"
	"github.com/Yuki33825/x-music-bar/internal/relay"
)

type AdminHandler struct {
	relay *relay.Relay
}

func NewAdminHandler(rel *relay.Relay) *AdminHandler {
	return &AdminHandler{relay: rel}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.relay.Stats())
}

func (h *AdminHandler) Params(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.relay.Engine().Params())
}

// UpdateParams replaces the engine tuning mid-show, keeping the catalog. The
// new params are validated before the swap; a bad tune never reaches the
// relay.
func (h *AdminHandler) UpdateParams(w http.ResponseWriter, r *http.Request) {
	var params recipe.Params
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	engine, err := recipe.NewEngine(params, h.relay.Engine().Catalog())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	h.relay.SetEngine(engine)
	writeJSON(w, http.StatusOK, params)
}
