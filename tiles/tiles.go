// Package tiles models the physical tile set: 104 numbered tiles (four
// colors, values 1-13, two copies each) plus two jokers, addressed by the
// ids 0..105. It also knows which tile sets are legal melds and what they
// score.
package tiles

import "sort"

const (
	// Count is the total number of tiles in a full pile.
	Count = 106

	// JokerA and JokerB are the two joker ids.
	JokerA = 104
	JokerB = 105

	colorSize = 26
	valueSpan = 13
)

// IsJoker reports whether t is one of the two jokers.
func IsJoker(t int) bool {
	return t == JokerA || t == JokerB
}

// Color returns the color index (0..3) of a non-joker tile.
func Color(t int) int {
	return t / colorSize
}

// Value returns the face value (1..13) of a non-joker tile.
func Value(t int) int {
	return t%valueSpan + 1
}

// All returns every tile id, in ascending order.
func All() []int {
	out := make([]int, Count)
	for i := range out {
		out[i] = i
	}
	return out
}

// Canonical returns a sorted copy of ts. Tilesets are compared and stored
// in this form.
func Canonical(ts []int) []int {
	out := make([]int, len(ts))
	copy(out, ts)
	sort.Ints(out)
	return out
}

// presentationKey maps a tile id to its display rank: the two copies of
// each color/value collapse onto the same position and jokers sort last.
func presentationKey(t int) int {
	if t < 2*colorSize || IsJoker(t) {
		return t
	}
	return t - 2*colorSize
}

// PresentationSort returns ts ordered the way clients render a tileset.
func PresentationSort(ts []int) []int {
	out := make([]int, len(ts))
	copy(out, ts)
	sort.Slice(out, func(i, j int) bool {
		return presentationKey(out[i]) < presentationKey(out[j])
	})
	return out
}

// SortBoard applies the presentation ordering to every tileset of a board.
func SortBoard(board [][]int) [][]int {
	out := make([][]int, len(board))
	for i, ts := range board {
		out[i] = PresentationSort(ts)
	}
	return out
}
