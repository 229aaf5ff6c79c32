/*
Package game
File: schema.go
Description:
    Structural validation for content (characters, boosts) and for session
    state. Content problems are fatal to the caller; state problems are
    reported so the persistence layer can fall back to a default.
*/

package game

import (
	"errors"
	"fmt"
	"math"
)

// ContentError describes a single structural problem in static content.
type ContentError struct {
	Kind   string // "character" or "boost"
	ID     string // Offending entry id, may be empty
	Field  string
	Reason string
}

func (e *ContentError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %s %s", e.Kind, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s %s", e.Kind, e.ID, e.Field, e.Reason)
}

// ErrInvalidState is wrapped by every ValidateState failure.
var ErrInvalidState = errors.New("invalid session state")

// ValidateCharacters checks every character and the id uniqueness across
// the list. All issues are returned joined.
func ValidateCharacters(chars []Character) error {
	var errs []error
	if len(chars) == 0 {
		errs = append(errs, &ContentError{Kind: "character", Field: "list", Reason: "must not be empty"})
	}

	seen := make(map[string]bool, len(chars))
	for i, ch := range chars {
		bad := func(field, reason string) {
			id := ch.ID
			if id == "" {
				id = fmt.Sprintf("#%d", i)
			}
			errs = append(errs, &ContentError{Kind: "character", ID: id, Field: field, Reason: reason})
		}

		if ch.ID == "" {
			bad("id", "is required")
		} else if seen[ch.ID] {
			bad("id", "is duplicated")
		}
		seen[ch.ID] = true

		if ch.Name == "" {
			bad("name", "is required")
		}
		for _, token := range []struct{ field, value string }{
			{"theme.bgTop", ch.Theme.BgTop},
			{"theme.bgBottom", ch.Theme.BgBottom},
			{"theme.accent", ch.Theme.Accent},
			{"theme.patternClass", ch.Theme.PatternClass},
		} {
			if token.value == "" {
				bad(token.field, "is required")
			}
		}
		if ch.Sprites.Images[IdleKey] == "" {
			bad("sprites.images.idle", "is required")
		}
		if len(ch.Sprites.Stages) == 0 {
			bad("sprites.stages", "must have at least one entry")
		}
		for j, st := range ch.Sprites.Stages {
			if st.MinPets < 0 {
				bad(fmt.Sprintf("sprites.stages[%d].minPets", j), "must be non-negative")
			}
			if st.Key == "" {
				bad(fmt.Sprintf("sprites.stages[%d].key", j), "is required")
				continue
			}
			if _, ok := ch.Sprites.Images[st.Key]; !ok {
				bad(fmt.Sprintf("sprites.stages[%d].key", j), fmt.Sprintf("references unknown image %q", st.Key))
			}
		}
		if !isFinite(ch.Anim.TapScale) || !isFinite(ch.Anim.TapWiggleDeg) {
			bad("anim", "must be finite numbers")
		}
	}
	return errors.Join(errs...)
}

// ValidateBoosts checks every boost variant and id uniqueness.
func ValidateBoosts(boosts []Boost) error {
	var errs []error
	seen := make(map[string]bool, len(boosts))
	for i, b := range boosts {
		bad := func(field, reason string) {
			id := b.ID
			if id == "" {
				id = fmt.Sprintf("#%d", i)
			}
			errs = append(errs, &ContentError{Kind: "boost", ID: id, Field: field, Reason: reason})
		}

		if b.ID == "" {
			bad("id", "is required")
		} else if seen[b.ID] {
			bad("id", "is duplicated")
		}
		seen[b.ID] = true

		if b.Title == "" {
			bad("title", "is required")
		}
		if b.Description == "" {
			bad("description", "is required")
		}
		if b.ImageDescription == "" {
			bad("imageDescription", "is required")
		}
		if b.Icon == "" {
			bad("icon", "is required")
		}
		if b.Price < 0 {
			bad("price", "must be non-negative")
		}
		if !(b.Value > 0) || math.IsInf(b.Value, 0) {
			bad("value", "must be a positive number")
		}

		switch b.Kind {
		case KindClickMultiplier:
		case KindAutoClick:
			if b.IntervalMs <= 0 {
				bad("intervalMs", "must be a positive integer")
			}
		default:
			bad("type", fmt.Sprintf("unknown variant %q", b.Kind))
		}
	}
	return errors.Join(errs...)
}

// ValidateState enforces the persisted schema: supported version,
// non-negative whole pet counts and literal-true owned markers.
func ValidateState(s State) error {
	switch {
	case s.Version != SchemaVersion:
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidState, s.Version)
	case !isWholeNonNegative(s.Pets):
		return fmt.Errorf("%w: pets must be a non-negative integer, got %v", ErrInvalidState, s.Pets)
	case !isWholeNonNegative(s.TotalPets):
		return fmt.Errorf("%w: totalPets must be a non-negative integer, got %v", ErrInvalidState, s.TotalPets)
	case s.OwnedBoosts == nil:
		return fmt.Errorf("%w: ownedBoosts is required", ErrInvalidState)
	}
	for id, owned := range s.OwnedBoosts {
		if !owned {
			return fmt.Errorf("%w: ownedBoosts[%q] must be true", ErrInvalidState, id)
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isWholeNonNegative(v float64) bool {
	return isFinite(v) && v >= 0 && v == math.Trunc(v)
}
