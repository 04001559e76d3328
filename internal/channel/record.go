package channel

import (
	"time"

	"github.com/Yuki33825/x-music-bar/internal/recipe"
)

// VectorRecord is the synchronized record schema: the last-written SABIT
// vector in display domain plus a write timestamp. The timestamp is for
// display and debugging only ("last updated"); the store's own conflict
// resolution decides which write wins, never the engine. Missing fields
// decode to 0.
type VectorRecord struct {
	Sweetness  float64 `json:"sweetness"`
	Acidity    float64 `json:"acidity"`
	Bitterness float64 `json:"bitterness"`
	Intensity  float64 `json:"intensity"`
	Texture    float64 `json:"texture"`

	// UpdatedAt is milliseconds since epoch.
	UpdatedAt int64  `json:"timestamp"`
	WriterID  string `json:"writer_id,omitempty"`
}

// NewVectorRecord stamps a display vector for writing to the channel.
func NewVectorRecord(d recipe.DisplayVector, writerID string) VectorRecord {
	return VectorRecord{
		Sweetness:  d.Sweetness,
		Acidity:    d.Acidity,
		Bitterness: d.Bitterness,
		Intensity:  d.Intensity,
		Texture:    d.Texture,
		UpdatedAt:  time.Now().UnixMilli(),
		WriterID:   writerID,
	}
}

// DisplayVector strips the record back down to its vector.
func (r VectorRecord) DisplayVector() recipe.DisplayVector {
	return recipe.DisplayVector{
		Sweetness:  r.Sweetness,
		Acidity:    r.Acidity,
		Bitterness: r.Bitterness,
		Intensity:  r.Intensity,
		Texture:    r.Texture,
	}
}
