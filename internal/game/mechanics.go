/*
Package game
File: mechanics.go
Description:
    Stage and sprite rules. These decide which visual a character shows for
    a given lifetime total. All functions are pure.
*/

package game

import (
	"slices"
	"strings"
)

// sortedStages returns the character's stages ordered by MinPets. Equal
// thresholds are ordered by key so the result never depends on the order
// stages were declared in.
func sortedStages(ch Character) []Stage {
	stages := slices.Clone(ch.Sprites.Stages)
	slices.SortFunc(stages, func(a, b Stage) int {
		if a.MinPets != b.MinPets {
			if a.MinPets < b.MinPets {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Key, b.Key)
	})
	return stages
}

// ActiveStageKey returns the key of the last stage whose threshold is met by
// totalPets. It is driven by the lifetime total so spending never regresses
// the visual stage. If no threshold is met the lowest stage is returned.
func ActiveStageKey(ch Character, totalPets float64) string {
	stages := sortedStages(ch)
	if len(stages) == 0 {
		return IdleKey
	}

	active := stages[0]
	for _, st := range stages {
		if totalPets < float64(st.MinPets) {
			break
		}
		active = st
	}
	return active.Key
}

// MaxStageKey returns the key of the highest-threshold stage.
func MaxStageKey(ch Character) string {
	stages := sortedStages(ch)
	if len(stages) == 0 {
		return IdleKey
	}
	return stages[len(stages)-1].Key
}

// IsAtMaxStage reports whether the character is fully evolved at totalPets.
func IsAtMaxStage(ch Character, totalPets float64) bool {
	return ActiveStageKey(ch, totalPets) == MaxStageKey(ch)
}

// SpriteForKey resolves a stage key to its visual reference. Keys that are not
// declared stages, or that map to nothing, fall back to the idle reference.
// This covers state drift such as a save created against another character.
func SpriteForKey(ch Character, key string) string {
	declared := false
	for _, st := range ch.Sprites.Stages {
		if st.Key == key {
			declared = true
			break
		}
	}
	if declared {
		if ref := strings.TrimSpace(ch.Sprites.Images[key]); ref != "" {
			return ref
		}
	}
	return ch.Sprites.Images[IdleKey]
}
