package recipe

import (
	"fmt"
	"math"
	"sort"
)

// Pour is one line of a computed recipe.
type Pour struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Result is the engine's output: a total volume plus pours sorted descending
// by amount. It is ephemeral and recreated on every invocation; the caller
// owns it outright.
type Result struct {
	Volume float64 `json:"volume"`
	Pours  []Pour  `json:"pours"`
}

// IngredientShare is one row of an allocation breakdown: the raw affinity
// score, its softmax weight, the resulting share of the distribution, the
// allocated amount, and whether it cleared the minimum pour.
type IngredientShare struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
	Share  float64 `json:"share"`
	Amount float64 `json:"amount"`
	Poured bool    `json:"poured"`
}

// Breakdown is the full allocation table behind a Result, for the explain
// surface and for tuning sessions.
type Breakdown struct {
	Input  EngineVector      `json:"input"`
	Volume float64           `json:"volume"`
	Shares []IngredientShare `json:"shares"`
	Result Result            `json:"result"`
}

// Engine converts a SABIT vector into a recipe. It is pure: no I/O, no state
// across calls, safe for concurrent use. The catalog is injected at
// construction and never mutated afterwards.
type Engine struct {
	params  Params
	catalog []Ingredient
}

// NewEngine builds an engine over the given tuning and catalog. Both are
// validated once here; Compute itself has no failure path.
func NewEngine(params Params, catalog []Ingredient) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("engine params: %w", err)
	}
	if err := ValidateCatalog(catalog); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	owned := make([]Ingredient, len(catalog))
	copy(owned, catalog)
	return &Engine{params: params, catalog: owned}, nil
}

// Params returns the engine's tuning.
func (e *Engine) Params() Params { return e.params }

// Catalog returns a copy of the engine's catalog in declaration order.
func (e *Engine) Catalog() []Ingredient {
	out := make([]Ingredient, len(e.catalog))
	copy(out, e.catalog)
	return out
}

// Compute derives a recipe from the input vector. The input is clamped to
// [0,1] per component; out-of-range values never fail. Total volume is affine
// in Texture alone; the remaining components shape the distribution only.
//
// An all-zero input degenerates to a uniform split of VolumeMin across the
// whole catalog. With the default 15-entry catalog that is 4.0 ml each, above
// the minimum pour; with larger catalogs entries may legitimately fall below
// the threshold and the pour list comes back sparse or empty. That is
// intended behaviour, not a bug.
func (e *Engine) Compute(v EngineVector) Result {
	volume, shares := e.allocate(v)
	return assemble(volume, shares, e.params.MinPour)
}

// Explain returns the full allocation table for the input, including entries
// that were filtered out of the final recipe.
func (e *Engine) Explain(v EngineVector) Breakdown {
	in := v.Clamped()
	volume, shares := e.allocate(in)
	return Breakdown{
		Input:  in,
		Volume: round1(volume),
		Shares: shares,
		Result: assemble(volume, shares, e.params.MinPour),
	}
}

// allocate runs the scoring and softmax allocation at full precision.
// The shares sum to 1 by construction, so the amounts sum to volume.
func (e *Engine) allocate(v EngineVector) (float64, []IngredientShare) {
	in := v.Clamped()
	volume := e.params.VolumeMin + (e.params.VolumeMax-e.params.VolumeMin)*in.Texture

	shares := make([]IngredientShare, len(e.catalog))
	var sum float64
	for i, ing := range e.catalog {
		// All components are non-negative so the dot product cannot go
		// negative, but clamp anyway.
		score := math.Max(0, in.Dot(ing.Profile))
		weight := math.Exp(score * e.params.Sigma)
		shares[i] = IngredientShare{Name: ing.Name, Score: score, Weight: weight}
		sum += weight
	}
	for i := range shares {
		shares[i].Share = shares[i].Weight / sum
		shares[i].Amount = shares[i].Share * volume
		shares[i].Poured = shares[i].Amount >= e.params.MinPour
	}
	return volume, shares
}

// assemble filters, orders, and rounds. Rounding happens only here, at the
// very end, so no rounding error compounds through the softmax.
func assemble(volume float64, shares []IngredientShare, minPour float64) Result {
	pours := make([]Pour, 0, len(shares))
	for _, s := range shares {
		if s.Amount < minPour {
			continue
		}
		pours = append(pours, Pour{Name: s.Name, Amount: s.Amount})
	}
	// Stable sort: equal amounts keep catalog declaration order.
	sort.SliceStable(pours, func(i, j int) bool {
		return pours[i].Amount > pours[j].Amount
	})
	for i := range pours {
		pours[i].Amount = round1(pours[i].Amount)
	}
	return Result{Volume: round1(volume), Pours: pours}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
