package save

import (
	"encoding/json"
	"fmt"

	"github.com/salvarecuero/tap-cat/internal/game"
)

// record is the on-disk shape of a session. Pointer fields let Decode tell
// a missing field from a zero value.
type record struct {
	Version       *int            `json:"version"`
	Pets          *float64        `json:"pets"`
	TotalPets     *float64        `json:"totalPets"`
	OwnedBoosts   map[string]bool `json:"ownedBoosts"`
	SelectedCatID *string         `json:"selectedCatId"`
}

// Encode serializes s. Balances are floored to whole pets; fractional
// accrual below one pet is not persisted.
func Encode(s game.State) ([]byte, error) {
	version := s.Version
	pets := game.FloorPets(s.Pets)
	total := game.FloorPets(s.TotalPets)
	owned := s.OwnedBoosts
	if owned == nil {
		owned = map[string]bool{}
	}
	selected := s.SelectedCatID

	return json.Marshal(record{
		Version:       &version,
		Pets:          &pets,
		TotalPets:     &total,
		OwnedBoosts:   owned,
		SelectedCatID: &selected,
	})
}

// Decode parses and validates a persisted record. Any error wraps
// game.ErrInvalidState.
func Decode(data []byte) (game.State, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return game.State{}, fmt.Errorf("%w: %v", game.ErrInvalidState, err)
	}

	missing := ""
	switch {
	case r.Version == nil:
		missing = "version"
	case r.Pets == nil:
		missing = "pets"
	case r.TotalPets == nil:
		missing = "totalPets"
	case r.SelectedCatID == nil:
		missing = "selectedCatId"
	}
	if missing != "" {
		return game.State{}, fmt.Errorf("%w: %s is required", game.ErrInvalidState, missing)
	}

	s := game.State{
		Version:       *r.Version,
		Pets:          *r.Pets,
		TotalPets:     *r.TotalPets,
		OwnedBoosts:   r.OwnedBoosts,
		SelectedCatID: *r.SelectedCatID,
	}
	if err := game.ValidateState(s); err != nil {
		return game.State{}, err
	}
	return s, nil
}
