// Package pricing computes the cost of a stay.
package pricing

import (
	"math"
	"time"

	"innkeep/pkg/model"
)

const night = 24 * time.Hour

// Nights is the number of nights in the stay, rounding a partial day up.
// Stays that do not move forward have zero nights.
func Nights(stay model.Stay) int {
	d := stay.CheckOut.Sub(stay.CheckIn)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(float64(d) / float64(night)))
}

// Total is rate times the number of nights. An unknown rate prices at zero.
func Total(rate *float64, stay model.Stay) float64 {
	if rate == nil {
		return 0
	}
	return *rate * float64(Nights(stay))
}
