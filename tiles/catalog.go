package tiles

// The catalog enumerates every legal meld once, keyed by its canonical
// form, with the meld's score as the value. Both physical copies of each
// color/value pair are distinct tiles, so every copy combination is its
// own entry.

type catalog map[string]int

// key encodes a canonical tileset. Tile ids fit in a byte.
func key(ts []int) string {
	b := make([]byte, len(ts))
	for i, t := range ts {
		b[i] = byte(t)
	}
	return string(b)
}

func tileID(color, copy, value int) int {
	return color*colorSize + copy*valueSpan + value
}

func score(ts []int) int {
	total := 0
	for _, t := range ts {
		total += Value(t)
	}
	return total
}

func (c catalog) add(ts []int) {
	ts = Canonical(ts)
	c[key(ts)] = score(ts)
}

// buildCatalog generates all groups (3 or 4 tiles of one value in distinct
// colors) and all runs (3+ consecutive values in one color).
func buildCatalog() catalog {
	c := make(catalog)
	c.addGroups()
	c.addRuns()
	return c
}

func (c catalog) addGroups() {
	for value := 0; value < valueSpan; value++ {
		for colors := 0; colors < 16; colors++ {
			picked := pickedColors(colors)
			if len(picked) < 3 {
				continue
			}
			c.addCopyCombos(picked, func(color, copy int) int {
				return tileID(color, copy, value)
			})
		}
	}
}

func (c catalog) addRuns() {
	for color := 0; color < 4; color++ {
		for start := 0; start < valueSpan; start++ {
			for length := 3; start+length <= valueSpan; length++ {
				values := make([]int, length)
				for i := range values {
					values[i] = start + i
				}
				c.addCopyCombos(values, func(value, copy int) int {
					return tileID(color, copy, value)
				})
			}
		}
	}
}

// addCopyCombos adds one entry per assignment of a physical copy to each
// slot of the meld.
func (c catalog) addCopyCombos(slots []int, id func(slot, copy int) int) {
	n := len(slots)
	for combo := 0; combo < 1<<n; combo++ {
		ts := make([]int, n)
		for i, slot := range slots {
			ts[i] = id(slot, combo>>i&1)
		}
		c.add(ts)
	}
}

func pickedColors(mask int) []int {
	var out []int
	for color := 0; color < 4; color++ {
		if mask>>color&1 == 1 {
			out = append(out, color)
		}
	}
	return out
}
