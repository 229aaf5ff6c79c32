package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStateDefaults(t *testing.T) {
	s := NewState(DefaultCharacterID)
	assert.Equal(t, SchemaVersion, s.Version)
	assert.Zero(t, s.Pets)
	assert.Zero(t, s.TotalPets)
	assert.NotNil(t, s.OwnedBoosts)
	assert.Empty(t, s.OwnedBoosts)
	assert.Equal(t, DefaultCharacterID, s.SelectedCatID)
}

func TestCloneIsDeep(t *testing.T) {
	s := NewState(DefaultCharacterID)
	s.OwnedBoosts["a"] = true

	c := s.Clone()
	c.OwnedBoosts["b"] = true
	assert.False(t, s.Owns("b"))

	var zero State
	assert.NotNil(t, zero.Clone().OwnedBoosts)
}

func TestCatalogLookups(t *testing.T) {
	orange := validCharacter("orange-tabby")
	tabby := validCharacter("tabby-cat")
	c := NewCatalog([]Character{tabby, orange}, []Boost{clickBoost("a", 2, 1)}, "")

	assert.Equal(t, "orange-tabby", c.DefaultID, "prefers the built-in default when present")
	assert.Equal(t, []string{"tabby-cat", "orange-tabby"}, c.CharacterIDs())
	assert.Equal(t, []string{"a"}, c.BoostIDs())

	_, ok := c.Boost("missing")
	assert.False(t, ok)

	s := NewState("ghost-cat")
	assert.Equal(t, "orange-tabby", c.ActiveCharacter(s).ID)
	s.SelectedCatID = "tabby-cat"
	assert.Equal(t, "tabby-cat", c.ActiveCharacter(s).ID)

	other := NewCatalog([]Character{tabby}, nil, "")
	assert.Equal(t, "tabby-cat", other.DefaultID, "falls back to the first character")
	assert.Equal(t, NewState("tabby-cat"), other.DefaultState())
}
