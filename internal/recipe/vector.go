package recipe

// DisplayVector is the SABIT vector as UI widgets produce it: each component
// nominally in [0,100]. Entry points do not range-check it; clamping is the
// engine's job once the vector is in engine domain.
type DisplayVector struct {
	Sweetness  float64 `json:"sweetness"`
	Acidity    float64 `json:"acidity"`
	Bitterness float64 `json:"bitterness"`
	Intensity  float64 `json:"intensity"`
	Texture    float64 `json:"texture"`
}

// EngineVector is the SABIT vector in engine domain: each component in [0,1].
// Components are independent; they are not required to sum to 1.
type EngineVector struct {
	Sweetness  float64 `json:"sweetness" yaml:"sweetness"`
	Acidity    float64 `json:"acidity" yaml:"acidity"`
	Bitterness float64 `json:"bitterness" yaml:"bitterness"`
	Intensity  float64 `json:"intensity" yaml:"intensity"`
	Texture    float64 `json:"texture" yaml:"texture"`
}

// ToEngineVector converts a display vector to engine domain by dividing each
// component by 100. It is a pure linear map and performs no clamping.
func ToEngineVector(d DisplayVector) EngineVector {
	return EngineVector{
		Sweetness:  d.Sweetness / 100,
		Acidity:    d.Acidity / 100,
		Bitterness: d.Bitterness / 100,
		Intensity:  d.Intensity / 100,
		Texture:    d.Texture / 100,
	}
}

// Dot returns the dot product of two engine vectors across all 5 axes.
func (v EngineVector) Dot(o EngineVector) float64 {
	return v.Sweetness*o.Sweetness +
		v.Acidity*o.Acidity +
		v.Bitterness*o.Bitterness +
		v.Intensity*o.Intensity +
		v.Texture*o.Texture
}

// Clamped returns a copy with every component clamped to [0,1]. Malformed
// remote data is clamped, never rejected.
func (v EngineVector) Clamped() EngineVector {
	return EngineVector{
		Sweetness:  clamp(v.Sweetness, 0, 1),
		Acidity:    clamp(v.Acidity, 0, 1),
		Bitterness: clamp(v.Bitterness, 0, 1),
		Intensity:  clamp(v.Intensity, 0, 1),
		Texture:    clamp(v.Texture, 0, 1),
	}
}

func (v EngineVector) axes() [5]float64 {
	return [5]float64{v.Sweetness, v.Acidity, v.Bitterness, v.Intensity, v.Texture}
}

// AxisNames lists the SABIT axes in declaration order.
var AxisNames = [5]string{"sweetness", "acidity", "bitterness", "intensity", "texture"}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
