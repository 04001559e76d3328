package recipe

import "fmt"

// Tuning defaults. Sigma and the volume range are product-tuning constants
// carried over from the installation's rehearsals; they are configuration,
// not derived values.
const (
	// DefaultSigma is the softmax temperature. Higher values sharpen the
	// pour distribution toward the best-matching ingredients; lower values
	// flatten it toward an even split.
	DefaultSigma = 12.0

	// DefaultVolumeMin and DefaultVolumeMax bound the total pour in ml.
	// Texture alone interpolates between them.
	DefaultVolumeMin = 60.0
	DefaultVolumeMax = 150.0

	// DefaultMinPour is the smallest amount (ml) worth pouring; allocations
	// below it are dropped from the result.
	DefaultMinPour = 1.0
)

// Params holds the engine's tuning knobs.
type Params struct {
	Sigma     float64 `json:"sigma"`
	VolumeMin float64 `json:"volume_min"`
	VolumeMax float64 `json:"volume_max"`
	MinPour   float64 `json:"min_pour"`
}

// DefaultParams returns the rehearsed tuning.
func DefaultParams() Params {
	return Params{
		Sigma:     DefaultSigma,
		VolumeMin: DefaultVolumeMin,
		VolumeMax: DefaultVolumeMax,
		MinPour:   DefaultMinPour,
	}
}

// Validate checks that the tuning is usable.
func (p Params) Validate() error {
	if p.Sigma <= 0 {
		return fmt.Errorf("sigma must be positive, got %f", p.Sigma)
	}
	if p.VolumeMin < 0 {
		return fmt.Errorf("volume_min must be non-negative, got %f", p.VolumeMin)
	}
	if p.VolumeMax <= p.VolumeMin {
		return fmt.Errorf("volume_max (%f) must exceed volume_min (%f)", p.VolumeMax, p.VolumeMin)
	}
	if p.MinPour < 0 {
		return fmt.Errorf("min_pour must be non-negative, got %f", p.MinPour)
	}
	return nil
}
