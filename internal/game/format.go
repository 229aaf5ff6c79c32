package game

import (
	"fmt"
	"math"
)

// FloorPets floors a balance to whole pets, staying in float64 so balances
// past the int64 range keep their magnitude. Negative and NaN become 0.
func FloorPets(v float64) float64 {
	switch {
	case !(v > 0):
		return 0
	case math.IsInf(v, 1):
		return math.MaxFloat64
	}
	return math.Floor(v)
}

// WholePets is FloorPets as the integer shown to the player. It saturates
// at math.MaxInt64.
func WholePets(v float64) int64 {
	f := FloorPets(v)
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(f)
}

// FormatRate renders a per-second rate for display, e.g. "0", "0.25",
// "2.5", "42", "1.5K".
func FormatRate(pps float64) string {
	switch {
	case pps == 0:
		return "0"
	case pps >= 1000:
		return fmt.Sprintf("%.1fK", pps/1000)
	case pps >= 10:
		return fmt.Sprintf("%.0f", pps)
	case pps >= 0.1:
		return fmt.Sprintf("%.1f", pps)
	default:
		return fmt.Sprintf("%.2f", pps)
	}
}
