/*
Package game
File: state.go
Description:
    Holds the session state value and the Catalog of loaded content.

    The Catalog replaces package-level content globals: it is built once by
    the content loader and passed explicitly to everything that needs it.
*/

package game

import "maps"

const (
	// SchemaVersion is the only persisted state version this build accepts.
	SchemaVersion = 1

	// DefaultCharacterID is the character a fresh session starts with.
	DefaultCharacterID = "orange-tabby"
)

// State is the mutable per-player session record.
//
// Pets and TotalPets are kept at full precision in memory because passive
// accrual adds fractional slices; they are floored at comparison and
// persistence boundaries.
type State struct {
	Version       int             `json:"version"`
	Pets          float64         `json:"pets"`
	TotalPets     float64         `json:"total_pets"`
	OwnedBoosts   map[string]bool `json:"owned_boosts"`
	SelectedCatID string          `json:"selected_cat_id"`
}

// NewState returns the default state for the given character.
func NewState(characterID string) State {
	return State{
		Version:       SchemaVersion,
		OwnedBoosts:   map[string]bool{},
		SelectedCatID: characterID,
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.OwnedBoosts = maps.Clone(s.OwnedBoosts)
	if out.OwnedBoosts == nil {
		out.OwnedBoosts = map[string]bool{}
	}
	return out
}

// Owns reports whether the boost id is in the owned set.
func (s State) Owns(boostID string) bool {
	return s.OwnedBoosts[boostID]
}

// Catalog is the validated, read-only content set.
type Catalog struct {
	Characters []Character
	Boosts     []Boost

	// DefaultID is the character used for new sessions and as the fallback
	// when a state references an unknown character.
	DefaultID string
}

// NewCatalog builds a catalog. An empty defaultID selects DefaultCharacterID
// when present, otherwise the first character.
func NewCatalog(characters []Character, boosts []Boost, defaultID string) *Catalog {
	c := &Catalog{Characters: characters, Boosts: boosts, DefaultID: defaultID}
	if c.DefaultID == "" {
		c.DefaultID = DefaultCharacterID
		if _, ok := c.Character(c.DefaultID); !ok && len(characters) > 0 {
			c.DefaultID = characters[0].ID
		}
	}
	return c
}

// Character looks up a character by id.
func (c *Catalog) Character(id string) (Character, bool) {
	for _, ch := range c.Characters {
		if ch.ID == id {
			return ch, true
		}
	}
	return Character{}, false
}

// Boost looks up a boost by id.
func (c *Catalog) Boost(id string) (Boost, bool) {
	for _, b := range c.Boosts {
		if b.ID == id {
			return b, true
		}
	}
	return Boost{}, false
}

// DefaultCharacter returns the fallback character.
func (c *Catalog) DefaultCharacter() Character {
	if ch, ok := c.Character(c.DefaultID); ok {
		return ch
	}
	if len(c.Characters) > 0 {
		return c.Characters[0]
	}
	return Character{}
}

// ActiveCharacter resolves the state's selected character, falling back to
// the default one when the id is unknown.
func (c *Catalog) ActiveCharacter(s State) Character {
	if ch, ok := c.Character(s.SelectedCatID); ok {
		return ch
	}
	return c.DefaultCharacter()
}

// DefaultState is the fresh-session state for this catalog.
func (c *Catalog) DefaultState() State {
	return NewState(c.DefaultID)
}

// CharacterIDs lists character ids in declaration order.
func (c *Catalog) CharacterIDs() []string {
	ids := make([]string, 0, len(c.Characters))
	for _, ch := range c.Characters {
		ids = append(ids, ch.ID)
	}
	return ids
}

// BoostIDs lists boost ids in declaration order.
func (c *Catalog) BoostIDs() []string {
	ids := make([]string, 0, len(c.Boosts))
	for _, b := range c.Boosts {
		ids = append(ids, b.ID)
	}
	return ids
}
