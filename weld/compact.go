package weld

import "fmt"

// CompactPositions writes each original vertex into the slot of its canonical
// index. Vertices sharing a slot are bit-identical when m came from
// BuildIndexMap(positions); a map that folds differing positions together is
// rejected rather than silently keeping one of them.
func CompactPositions[T Float](m IndexMap, positions []T) ([]T, error) {
	if len(positions)%3 != 0 {
		return nil, fmt.Errorf("position buffer length %d is not a multiple of 3: %w",
			len(positions), ErrMalformedLength)
	}
	if nVerts := len(positions) / 3; nVerts != len(m) {
		return nil, fmt.Errorf("index map has %d entries for %d vertices: %w",
			len(m), nVerts, ErrInconsistentMap)
	}
	for i, c := range m {
		if c < 0 || c >= len(m) {
			return nil, fmt.Errorf("entry %d holds canonical index %d outside [0,%d): %w",
				i, c, len(m), ErrInconsistentMap)
		}
	}
	var (
		count   = m.Count()
		out     = make([]T, 3*count)
		written = make([]bool, count)
	)
	for i, c := range m {
		if written[c] {
			if keyOf(out, c) != keyOf(positions, i) {
				return nil, fmt.Errorf("vertex %d differs from the position already in slot %d: %w",
					i, c, ErrInconsistentMap)
			}
			continue
		}
		copy(out[3*c:3*c+3], positions[3*i:3*i+3])
		written[c] = true
	}
	for c, ok := range written {
		if !ok {
			return nil, fmt.Errorf("canonical index %d has no source vertex: %w",
				c, ErrInconsistentMap)
		}
	}
	return out, nil
}

// Weld builds the index map and the compacted positions in one call.
func Weld[T Float](positions []T) (IndexMap, []T, error) {
	m, err := BuildIndexMap(positions)
	if err != nil {
		return nil, nil, err
	}
	compacted, err := CompactPositions(m, positions)
	if err != nil {
		return nil, nil, err
	}
	return m, compacted, nil
}
