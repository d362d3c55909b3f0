package game

// mergeStep records one pairwise merge produced by collapse.
type mergeStep[T any] struct {
	at       int // index of the surviving element in the collapsed line
	consumed T
	value    int
}

// collapse compacts a line ordered from the edge the tiles slide toward.
// Equal neighbours merge pairwise from the leading edge and the scan skips
// the consumed partner, so [2 2 2] gives [4 2] and [2 2 2 2] gives [4 4].
// Relative order of survivors is preserved. Values are not modified; the
// caller applies the merge steps.
func collapse[T any](line []T, value func(T) int) ([]T, []mergeStep[T]) {
	out := make([]T, 0, len(line))
	var merges []mergeStep[T]

	for i := 0; i < len(line); i++ {
		cur := line[i]
		if i+1 < len(line) && value(line[i+1]) == value(cur) {
			merges = append(merges, mergeStep[T]{
				at:       len(out),
				consumed: line[i+1],
				value:    value(cur) + value(line[i+1]),
			})
			i++
		}
		out = append(out, cur)
	}

	return out, merges
}

// CollapseLine applies the merge rule to plain values ordered from the
// leading edge. Zeros are treated as empty cells. It returns the compacted
// values (without padding) and the score the merges earn.
func CollapseLine(values []int) ([]int, int) {
	occupied := make([]int, 0, len(values))
	for _, v := range values {
		if v != 0 {
			occupied = append(occupied, v)
		}
	}

	out, merges := collapse(occupied, func(v int) int { return v })
	score := 0
	for _, m := range merges {
		out[m.at] = m.value
		score += m.value
	}
	return out, score
}
