// Package weld folds coincident vertices of a renderable mesh into single
// simulation nodes and re-expresses connectivity against them.
//
// Coincidence is bit-exact: two vertices merge only when all three coordinate
// bit patterns match. Vertices a rounding error apart stay separate nodes, and
// -0 and +0 are different coordinates.
package weld

import (
	"fmt"
	"math"
)

type Float interface {
	float32 | float64
}

// IndexMap holds, at entry i, the canonical node index of original vertex i.
// Canonical indices are dense and assigned in order of first appearance.
type IndexMap []int

type positionKey [3]uint64

func bits[T Float](v T) uint64 {
	switch x := any(v).(type) {
	case float32:
		return uint64(math.Float32bits(x))
	case float64:
		return math.Float64bits(x)
	}
	panic("unreachable")
}

func keyOf[T Float](positions []T, vertex int) positionKey {
	p := positions[3*vertex : 3*vertex+3]
	return positionKey{bits(p[0]), bits(p[1]), bits(p[2])}
}

// BuildIndexMap scans the interleaved xyz buffer in vertex order. The lowest
// original index sharing a position decides its canonical index, so the
// result is stable for a given input order.
//
// NaN coordinates are not canonicalized: two NaNs merge only when their
// payloads are identical, and NaNs with different payloads stay separate nodes.
func BuildIndexMap[T Float](positions []T) (IndexMap, error) {
	if len(positions)%3 != 0 {
		return nil, fmt.Errorf("position buffer length %d is not a multiple of 3: %w",
			len(positions), ErrMalformedLength)
	}
	var (
		nVerts = len(positions) / 3
		m      = make(IndexMap, nVerts)
		seen   = make(map[positionKey]int, nVerts)
		next   int
	)
	for i := 0; i < nVerts; i++ {
		key := keyOf(positions, i)
		if c, ok := seen[key]; ok {
			m[i] = c
			continue
		}
		seen[key] = next
		m[i] = next
		next++
	}
	return m, nil
}

// Count returns the number of canonical nodes, max(m)+1, or 0 for an empty map.
func (m IndexMap) Count() (count int) {
	for _, c := range m {
		if c+1 > count {
			count = c + 1
		}
	}
	return
}

// Validate checks that the canonical indices, read left to right, first
// appear as 0, 1, 2, ... with no gaps and no negative entries.
func (m IndexMap) Validate() error {
	next := 0
	for i, c := range m {
		switch {
		case c < 0 || c > next:
			return fmt.Errorf("entry %d holds canonical index %d, expected at most %d: %w",
				i, c, next, ErrInconsistentMap)
		case c == next:
			next++
		}
	}
	return nil
}

// Duplicates returns how many original vertices were folded into an earlier one.
func (m IndexMap) Duplicates() int {
	return len(m) - m.Count()
}
