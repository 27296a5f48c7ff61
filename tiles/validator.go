package tiles

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

const cacheSize = 10000

// Validator answers whether a tileset is a legal meld and what it scores.
// Jokers stand in for any tile; a joker scores the value of the tile it
// replaces, and an ambiguous replacement scores the highest possibility.
// Results are memoized, and a Validator is safe for concurrent use.
type Validator struct {
	catalog catalog
	valid   *lru.Cache[string, bool]
	values  *lru.Cache[string, int]
}

func NewValidator() *Validator {
	valid, _ := lru.New[string, bool](cacheSize)
	values, _ := lru.New[string, int](cacheSize)
	return &Validator{
		catalog: buildCatalog(),
		valid:   valid,
		values:  values,
	}
}

// IsValid reports whether ts is a legal group or run.
func (v *Validator) IsValid(ts []int) bool {
	ts = Canonical(ts)
	k := key(ts)
	if cached, ok := v.valid.Get(k); ok {
		return cached
	}
	_, ok := v.resolve(ts)
	v.valid.Add(k, ok)
	return ok
}

// SetValue returns the score of ts, or 0 when ts is not a legal meld.
func (v *Validator) SetValue(ts []int) int {
	ts = Canonical(ts)
	k := key(ts)
	if cached, ok := v.values.Get(k); ok {
		return cached
	}
	value, ok := v.resolve(ts)
	if !ok {
		value = 0
	}
	v.values.Add(k, value)
	return value
}

// resolve finds the best catalog entry ts can stand for, trying every
// joker replacement.
func (v *Validator) resolve(ts []int) (int, bool) {
	jokers := 0
	rest := make([]int, 0, len(ts))
	for _, t := range ts {
		if IsJoker(t) {
			jokers++
		} else {
			rest = append(rest, t)
		}
	}
	switch jokers {
	case 0:
		value, ok := v.catalog[key(rest)]
		return value, ok
	case 1:
		return v.best(rest, func(try func([]int)) {
			for a := 0; a < JokerA; a++ {
				try([]int{a})
			}
		})
	case 2:
		return v.best(rest, func(try func([]int)) {
			for a := 0; a < JokerA; a++ {
				for b := a + 1; b < JokerA; b++ {
					try([]int{a, b})
				}
			}
		})
	default:
		return 0, false
	}
}

// best runs every candidate joker replacement produced by gen and keeps
// the highest-scoring match.
func (v *Validator) best(rest []int, gen func(try func([]int))) (int, bool) {
	bestValue, found := 0, false
	gen(func(subst []int) {
		candidate := Canonical(append(append([]int{}, rest...), subst...))
		if value, ok := v.catalog[key(candidate)]; ok {
			found = true
			if value > bestValue {
				bestValue = value
			}
		}
	})
	return bestValue, found
}
