package recipe

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Ingredient is a static catalog entry: a display name plus a characteristic
// vector in engine domain. A component of 1.0 means the ingredient sits at
// that axis's physical reference maximum (e.g. simple syrup for sweetness).
type Ingredient struct {
	Name    string       `json:"name" yaml:"name"`
	Profile EngineVector `json:"profile" yaml:"profile"`
}

// DefaultCatalog returns the built-in 15-ingredient catalog. Declaration
// order is the tie-break key when allocated amounts are equal, so the order
// here is part of the data.
func DefaultCatalog() []Ingredient {
	return []Ingredient{
		{Name: "Simple Syrup", Profile: EngineVector{Sweetness: 1.0, Texture: 0.2}},
		{Name: "Fresh Lemon Juice", Profile: EngineVector{Sweetness: 0.1, Acidity: 1.0, Texture: 0.1}},
		{Name: "Fresh Lime Juice", Profile: EngineVector{Sweetness: 0.1, Acidity: 0.9, Bitterness: 0.1, Texture: 0.1}},
		{Name: "Campari", Profile: EngineVector{Sweetness: 0.3, Acidity: 0.1, Bitterness: 1.0, Intensity: 0.6, Texture: 0.2}},
		{Name: "Angostura Bitters", Profile: EngineVector{Sweetness: 0.1, Bitterness: 0.9, Intensity: 0.7}},
		{Name: "London Dry Gin", Profile: EngineVector{Acidity: 0.1, Bitterness: 0.3, Intensity: 0.8, Texture: 0.1}},
		{Name: "Vodka", Profile: EngineVector{Intensity: 1.0}},
		{Name: "White Rum", Profile: EngineVector{Sweetness: 0.2, Intensity: 0.7, Texture: 0.1}},
		{Name: "Bourbon", Profile: EngineVector{Sweetness: 0.3, Bitterness: 0.2, Intensity: 0.8, Texture: 0.2}},
		{Name: "Sweet Vermouth", Profile: EngineVector{Sweetness: 0.6, Acidity: 0.1, Bitterness: 0.4, Intensity: 0.3, Texture: 0.2}},
		{Name: "Dry Vermouth", Profile: EngineVector{Sweetness: 0.2, Acidity: 0.2, Bitterness: 0.3, Intensity: 0.3, Texture: 0.1}},
		{Name: "Orange Juice", Profile: EngineVector{Sweetness: 0.5, Acidity: 0.6, Bitterness: 0.1, Texture: 0.3}},
		{Name: "Egg White", Profile: EngineVector{Texture: 1.0}},
		{Name: "Heavy Cream", Profile: EngineVector{Sweetness: 0.3, Texture: 0.9}},
		{Name: "Soda Water", Profile: EngineVector{Acidity: 0.1, Texture: 0.3}},
	}
}

// ValidateCatalog checks the hard constraints on authored catalog data:
// non-empty, unique names, every profile component in [0,1].
func ValidateCatalog(catalog []Ingredient) error {
	if len(catalog) == 0 {
		return fmt.Errorf("catalog is empty")
	}
	seen := make(map[string]bool, len(catalog))
	for i, ing := range catalog {
		if ing.Name == "" {
			return fmt.Errorf("catalog entry %d has no name", i)
		}
		if seen[ing.Name] {
			return fmt.Errorf("duplicate catalog entry: %s", ing.Name)
		}
		seen[ing.Name] = true
		for a, v := range ing.Profile.axes() {
			if v < 0 || v > 1 {
				return fmt.Errorf("%s: %s=%.3f out of [0,1]", ing.Name, AxisNames[a], v)
			}
		}
	}
	return nil
}

// MissingReferenceAxes reports axes with no catalog entry at exactly 1.0.
// Each axis's scale is defined by one reference ingredient; a gap is a data
// issue worth a startup warning, not a fatal error.
func MissingReferenceAxes(catalog []Ingredient) []string {
	var missing []string
	for a, name := range AxisNames {
		found := false
		for _, ing := range catalog {
			if ing.Profile.axes()[a] == 1.0 {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, name)
		}
	}
	return missing
}

type catalogFile struct {
	Ingredients []Ingredient `yaml:"ingredients"`
}

// LoadCatalogFile reads a YAML catalog override. The file's declaration order
// becomes the tie-break order.
func LoadCatalogFile(path string) ([]Ingredient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := ValidateCatalog(f.Ingredients); err != nil {
		return nil, err
	}
	return f.Ingredients, nil
}
