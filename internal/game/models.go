/*
Package game
File: models.go
Description:
    Defines the data structures used by the tap-cat engine.
    Characters and Boosts are static content, decoded from YAML and never
    mutated after loading. State is the per-player session record.

    No logic is performed here; this file is strictly for type definitions.
*/

package game

// IdleKey is the sprite key every character must provide. It is the fallback
// for any stage key that cannot be resolved.
const IdleKey = "idle"

// Theme holds the presentation tokens for a character. The engine never
// interprets them.
type Theme struct {
	BgTop        string `yaml:"bgTop" json:"bg_top"`
	BgBottom     string `yaml:"bgBottom" json:"bg_bottom"`
	Accent       string `yaml:"accent" json:"accent"`
	PatternClass string `yaml:"patternClass" json:"pattern_class"`
}

// Stage is a visual milestone unlocked once lifetime pets reach MinPets.
type Stage struct {
	MinPets int64  `yaml:"minPets" json:"min_pets"`
	Key     string `yaml:"key" json:"key"`
}

// Sprites maps stage keys to visual references (usually image paths).
type Sprites struct {
	Images     map[string]string `yaml:"images" json:"images"`                             // Stage key -> reference. "idle" is mandatory.
	TapOverlay string            `yaml:"tapOverlay,omitempty" json:"tap_overlay,omitempty"` // Optional overlay shown on tap
	Stages     []Stage           `yaml:"stages" json:"stages"`                             // Unordered; sorted by MinPets when evaluated
}

// Anim carries the tap animation parameters. Presentation only.
type Anim struct {
	TapScale     float64 `yaml:"tapScale" json:"tap_scale"`
	TapWiggleDeg float64 `yaml:"tapWiggleDeg" json:"tap_wiggle_deg"`
}

// Character is a playable creature.
type Character struct {
	ID      string  `yaml:"id" json:"id"`
	Name    string  `yaml:"name" json:"name"`
	Theme   Theme   `yaml:"theme" json:"theme"`
	Sprites Sprites `yaml:"sprites" json:"sprites"`
	Anim    Anim    `yaml:"anim" json:"anim"`
}

// BoostKind tags the Boost variant.
type BoostKind string

const (
	// KindClickMultiplier multiplies the per-tap yield by Value.
	KindClickMultiplier BoostKind = "clickMultiplier"
	// KindAutoClick grants Value pets every IntervalMs milliseconds.
	KindAutoClick BoostKind = "autoClick"
)

// Boost is a one-time purchasable upgrade. Kind selects which of the
// variant fields are meaningful: IntervalMs is only read for KindAutoClick.
type Boost struct {
	ID               string    `yaml:"id" json:"id"`
	Kind             BoostKind `yaml:"type" json:"type"`
	Title            string    `yaml:"title" json:"title"`
	Description      string    `yaml:"description" json:"description"`
	ImageDescription string    `yaml:"imageDescription" json:"image_description"`
	Price            int64     `yaml:"price" json:"price"`
	Icon             string    `yaml:"icon" json:"icon"`
	Value            float64   `yaml:"value" json:"value"`
	IntervalMs       int64     `yaml:"intervalMs,omitempty" json:"interval_ms,omitempty"`
}
