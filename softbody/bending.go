package softbody

import (
	"fmt"
	"sort"

	"github.com/james-bowman/sparse"

	"github.com/notargets/softweld/weld"
)

type nodePair [2]int

func orderedPair(i, j int) nodePair {
	if i > j {
		i, j = j, i
	}
	return nodePair{i, j}
}

// edges returns every distinct node pair joined by a link or by an edge of a
// face or tetrahedron.
func (b *Body) edges() map[nodePair]bool {
	edges := make(map[nodePair]bool)
	addGroups := func(buf weld.IndexBuffer, arity int) {
		for g := 0; g < groupCount(buf, arity); g++ {
			for i := 0; i < arity; i++ {
				for j := i + 1; j < arity; j++ {
					a, c := buf.Get(g*arity+i), buf.Get(g*arity+j)
					if a != c {
						edges[orderedPair(a, c)] = true
					}
				}
			}
		}
	}
	addGroups(b.links, 2)
	addGroups(b.faces, 3)
	addGroups(b.tetras, 4)
	return edges
}

// BendingLinks returns the node pairs whose shortest path along the body's
// edges is between 2 and distance hops long, as a link buffer ordered by the
// lower and then the higher node. Walks of length k are the nonzeros of the
// k-th power of the adjacency matrix.
func (b *Body) BendingLinks(distance int) (weld.IndexBuffer, error) {
	if distance < 2 {
		return nil, fmt.Errorf("bending distance must be at least 2, got %d", distance)
	}
	var (
		n     = b.NumNodes()
		edges = b.edges()
		found = make(map[nodePair]bool)
	)
	if n > 0 && len(edges) > 0 {
		dok := sparse.NewDOK(n, n)
		for e := range edges {
			dok.Set(e[0], e[1], 1)
			dok.Set(e[1], e[0], 1)
		}
		adjacency := dok.ToCSR()
		walks := adjacency
		for k := 2; k <= distance; k++ {
			next := &sparse.CSR{}
			next.Mul(walks, adjacency)
			raw := next.RawMatrix()
			for i := 0; i < n; i++ {
				for p := raw.Indptr[i]; p < raw.Indptr[i+1]; p++ {
					j := raw.Ind[p]
					if j <= i || raw.Data[p] == 0 {
						continue
					}
					if pair := (nodePair{i, j}); !edges[pair] {
						found[pair] = true
					}
				}
			}
			walks = next
		}
	}

	pairs := make([]nodePair, 0, len(found))
	for p := range found {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	out := weld.NewIndexBuffer(max(n-1, 0), 2*len(pairs))
	for k, p := range pairs {
		out.Set(2*k, p[0])
		out.Set(2*k+1, p[1])
	}
	return out, nil
}

// GenerateBendingConstraints keeps BendingLinks(distance) on the body, where
// WriteYAML exports them next to the structural links.
func (b *Body) GenerateBendingConstraints(distance int) error {
	bending, err := b.BendingLinks(distance)
	if err != nil {
		return err
	}
	b.bending = bending
	return nil
}

func (b *Body) Bending() weld.IndexBuffer { return b.bending }

func (b *Body) NumBending() int { return groupCount(b.bending, 2) }
