// Package wheel implements the randomized selection wheel used for both the
// cuisine draw and the restaurant draw. A wheel has no state between draws:
// every spin produces a fresh State from the current item count.
package wheel

import (
	"errors"
	"math"
	"math/rand/v2"
)

// FullSpins is the number of cosmetic background rotations added to every
// draw. It only affects how long the spin looks, never the drawn index.
const FullSpins = 10

var ErrNoItems = errors.New("wheel has no items")

// State is the outcome of a single draw. Index and Rotation are derived
// from one random sample and agree with each other: recovering the index
// from the resting rotation always yields Index.
type State struct {
	Count        int     `json:"count"`
	Index        int     `json:"index"`
	SegmentAngle float64 `json:"segment_angle"`
	Rotation     float64 `json:"rotation"`
}

// Draw spins a wheel of n items and returns the resulting state.
func Draw(n int) (State, error) {
	return draw(rand.IntN, n)
}

// DrawWith is Draw with an explicit random source, for reproducible draws.
func DrawWith(rng *rand.Rand, n int) (State, error) {
	return draw(rng.IntN, n)
}

func draw(intn func(int) int, n int) (State, error) {
	if n <= 0 {
		return State{}, ErrNoItems
	}

	angle := 360.0 / float64(n)
	segment := intn(n)

	// The pointer sits at the top while the wheel itself rotates, so the
	// rotation that rests `segment` under the pointer is the inverse of the
	// recovery formula below. Computing it this way keeps IndexForRotation
	// the single source of truth: the recovered index equals the sampled
	// segment for every draw.
	rotation := FullSpins*360 + float64(n-1-segment)*angle + angle/2

	return State{
		Count:        n,
		Index:        IndexForRotation(rotation, n),
		SegmentAngle: angle,
		Rotation:     rotation,
	}, nil
}

// IndexForRotation recovers the resting segment index from a rotation in
// degrees. The wheel rotates in the opposite visual sense from the fixed
// pointer, hence the 360 minus term.
func IndexForRotation(rotation float64, n int) int {
	angle := 360.0 / float64(n)
	normalized := math.Mod(rotation, 360)

	return int(math.Floor((360-normalized)/angle)) % n
}

// RevealSequence returns the order in which item indices are displayed
// while the wheel settles: `ticks` cycling steps through the items in
// order, then the final drawn index. The drawn item is fixed before the
// reveal starts; the sequence always ends on it.
func RevealSequence(n, ticks, final int) []int {
	if n <= 0 {
		return nil
	}

	seq := make([]int, 0, ticks+1)
	for i := 0; i < ticks; i++ {
		seq = append(seq, i%n)
	}

	return append(seq, final%n)
}
