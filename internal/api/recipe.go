package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Yuki33825/x-music-bar/internal/recipe"
	"github.com/Yuki33825/x-music-bar/internal/relay"
)

// RecipeHandler serves stateless computations: a display surface (or anyone
// poking at the installation) can ask for a recipe without touching the
// shared record.
type RecipeHandler struct {
	relay *relay.Relay
}

func NewRecipeHandler(rel *relay.Relay) *RecipeHandler {
	return &RecipeHandler{relay: rel}
}

func (h *RecipeHandler) Compute(w http.ResponseWriter, r *http.Request) {
	d, err := parseDisplayVector(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.relay.Engine().Compute(recipe.ToEngineVector(d)))
}

func (h *RecipeHandler) Explain(w http.ResponseWriter, r *http.Request) {
	d, err := parseDisplayVector(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.relay.Engine().Explain(recipe.ToEngineVector(d)))
}

func (h *RecipeHandler) Ingredients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.relay.Engine().Catalog())
}

// parseDisplayVector reads the five axes from query params, display domain,
// missing params defaulting to 0.
func parseDisplayVector(q url.Values) (recipe.DisplayVector, error) {
	var d recipe.DisplayVector
	fields := []struct {
		name string
		dst  *float64
	}{
		{"sweetness", &d.Sweetness},
		{"acidity", &d.Acidity},
		{"bitterness", &d.Bitterness},
		{"intensity", &d.Intensity},
		{"texture", &d.Texture},
	}
	for _, f := range fields {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return d, fmt.Errorf("invalid %s", f.name)
		}
		*f.dst = x
	}
	return d, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
