// Package store loads the ingredient catalog from an external source. The
// catalog is read once at startup and is immutable afterwards; recipe results
// are never persisted.
package store

import (
	"context"

	"github.com/Yuki33825/x-music-bar/internal/recipe"
)

type Store interface {
	// LoadIngredients returns the catalog in its authored order; that order
	// is the engine's tie-break key.
	LoadIngredients(ctx context.Context) ([]recipe.Ingredient, error)
	Close() error
}
