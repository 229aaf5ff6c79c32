/*
Package game
File: economy.go
Description:
    Handles the pet economy:
    1. Per-tap yield from owned click multipliers.
    2. Per-second passive yield from owned auto-click boosts, scaled by the
       click synergy factor.
    3. Purchase and earnings transitions on State.

    Every function here is pure. Transitions return a new State and never
    modify their input.
*/

package game

import "math"

// MaxSynergy caps the factor by which click power boosts passive income.
const MaxSynergy = 24.0

// PerClickYield is the product of the values of every owned click
// multiplier, starting from 1. Purchase order does not matter.
func PerClickYield(boosts []Boost, owned map[string]bool) float64 {
	multiplier := 1.0
	for _, b := range boosts {
		if b.Kind == KindClickMultiplier && owned[b.ID] {
			multiplier *= b.Value
		}
	}
	return multiplier
}

// AutoClickBoosts returns the owned auto-click boosts in catalog order.
func AutoClickBoosts(boosts []Boost, owned map[string]bool) []Boost {
	var out []Boost
	for _, b := range boosts {
		if b.Kind == KindAutoClick && owned[b.ID] {
			out = append(out, b)
		}
	}
	return out
}

// SynergyFactor couples passive income to click investment:
// min(sqrt(perClick), MaxSynergy).
func SynergyFactor(perClick float64) float64 {
	return math.Min(math.Sqrt(perClick), MaxSynergy)
}

// PerSecondYield sums value * (1000 / intervalMs) over owned auto-click
// boosts and multiplies the result by the synergy factor.
func PerSecondYield(boosts []Boost, owned map[string]bool) float64 {
	base := 0.0
	for _, b := range AutoClickBoosts(boosts, owned) {
		if b.IntervalMs <= 0 {
			continue
		}
		base += b.Value * (1000 / float64(b.IntervalMs))
	}
	if base == 0 {
		return 0
	}
	return base * SynergyFactor(PerClickYield(boosts, owned))
}

// CanPurchase reports whether the boost is not yet owned and the whole-pet
// balance covers its price.
func CanPurchase(s State, b Boost) bool {
	return !s.Owns(b.ID) && FloorPets(s.Pets) >= float64(b.Price)
}

// Purchase deducts the price and marks the boost owned. It returns s
// unchanged when CanPurchase is false. TotalPets is never touched.
func Purchase(s State, b Boost) State {
	if !CanPurchase(s, b) {
		return s
	}
	next := s.Clone()
	next.Pets -= float64(b.Price)
	next.OwnedBoosts[b.ID] = true
	return next
}

// ApplyEarnings adds amount to both the balance and the lifetime total.
// Non-positive or non-finite amounts are ignored so TotalPets can only grow.
func ApplyEarnings(s State, amount float64) State {
	if !(amount > 0) || math.IsInf(amount, 0) {
		return s
	}
	next := s.Clone()
	next.Pets += amount
	next.TotalPets += amount
	return next
}

// SwitchCharacter is the committed form of a character switch: a fresh
// session for the new character. Progress is forfeited.
func SwitchCharacter(characterID string) State {
	return NewState(characterID)
}
