package rating

import "math"

const (
	DefaultInitial = 1200.0
	DefaultK       = 20.0
	deviation      = 400.0
)

// ExpectedScore is the probability that a player rated ra beats one rated rb.
func ExpectedScore(ra, rb float64) float64 {
	return 1 / (1 + math.Pow(10, (rb-ra)/deviation))
}

func NewRating(r, expected, actual, k float64) float64 {
	return r + k*(actual-expected)
}
