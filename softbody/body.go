// Package softbody assembles the topology a deformable body solver consumes:
// one node per distinct position and links, faces and tetrahedra expressed in
// node indices.
package softbody

import (
	"fmt"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/softweld/logger"
	"github.com/notargets/softweld/utils"
	"github.com/notargets/softweld/weld"
)

// Source is a renderable mesh: interleaved xyz positions and connectivity in
// original vertex indices. Any connectivity buffer may be nil.
type Source struct {
	Positions []float64
	Links     weld.IndexBuffer // pairs
	Faces     weld.IndexBuffer // triples
	Tetras    weld.IndexBuffer // quadruples

	// ParallelDegree above 1 remaps each buffer in that many partitions
	ParallelDegree int
}

type Body struct {
	indexMap weld.IndexMap
	nodes    []float64
	links    weld.IndexBuffer
	faces    weld.IndexBuffer
	tetras   weld.IndexBuffer
	bending  weld.IndexBuffer
}

type group struct {
	kind utils.ElementType
	src  weld.IndexBuffer
	dst  *weld.IndexBuffer
}

// NewBody welds the source positions and remaps every connectivity buffer
// onto the resulting nodes. Either the whole body is built or none of it.
func NewBody(src Source) (*Body, error) {
	b := &Body{}
	groups := []group{
		{utils.Line, src.Links, &b.links},
		{utils.Triangle, src.Faces, &b.faces},
		{utils.Tet, src.Tetras, &b.tetras},
	}
	for _, g := range groups {
		if g.src == nil {
			continue
		}
		if arity := g.kind.GetNumNodes(); g.src.Len()%arity != 0 {
			return nil, fmt.Errorf("%s buffer length %d is not a multiple of %d: %w",
				g.kind, g.src.Len(), arity, weld.ErrMalformedLength)
		}
	}

	if n := utils.CountNaN(src.Positions); n > 0 {
		// NaN coordinates only weld with an identical bit pattern
		logger.Log.Warn("NaN coordinates in positions", zap.Int("count", n))
	}
	var err error
	if b.indexMap, b.nodes, err = weld.Weld(src.Positions); err != nil {
		return nil, err
	}

	var (
		wg       sync.WaitGroup
		errs     = make([]error, len(groups))
		maxValue = max(b.indexMap.Count()-1, 0)
	)
	for i, g := range groups {
		if g.src == nil {
			continue
		}
		wg.Add(1)
		go func(i int, g group) {
			defer wg.Done()
			dst := weld.NewIndexBuffer(maxValue, g.src.Len())
			if src.ParallelDegree > 1 {
				errs[i] = weld.RemapParallel(b.indexMap, g.src, dst, src.ParallelDegree)
			} else {
				errs[i] = weld.RemapGroups(b.indexMap, g.kind, g.src, dst)
			}
			if errs[i] == nil {
				*g.dst = dst
			}
		}(i, g)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("remapping %s buffer: %w", groups[i].kind, err)
		}
	}

	logger.Log.Debug("soft body assembled",
		zap.Int("vertices", len(b.indexMap)),
		zap.Int("nodes", b.NumNodes()),
		zap.Int("links", b.NumLinks()),
		zap.Int("faces", b.NumFaces()),
		zap.Int("tetras", b.NumTetras()))
	return b, nil
}

func groupCount(buf weld.IndexBuffer, arity int) int {
	if buf == nil {
		return 0
	}
	return buf.Len() / arity
}

func (b *Body) NumNodes() int  { return len(b.nodes) / 3 }
func (b *Body) NumLinks() int  { return groupCount(b.links, 2) }
func (b *Body) NumFaces() int  { return groupCount(b.faces, 3) }
func (b *Body) NumTetras() int { return groupCount(b.tetras, 4) }

// IndexMap returns the original vertex to node mapping. It is shared, not copied.
func (b *Body) IndexMap() weld.IndexMap { return b.indexMap }

// NodePositions returns a copy of the interleaved node positions.
func (b *Body) NodePositions() []float64 {
	out := make([]float64, len(b.nodes))
	copy(out, b.nodes)
	return out
}

func (b *Body) Links() weld.IndexBuffer  { return b.links }
func (b *Body) Faces() weld.IndexBuffer  { return b.faces }
func (b *Body) Tetras() weld.IndexBuffer { return b.tetras }

func (b *Body) Node(i int) r3.Vec {
	return r3.Vec{X: b.nodes[3*i], Y: b.nodes[3*i+1], Z: b.nodes[3*i+2]}
}

// BoundingBox returns the axis aligned extent of the nodes; both corners are
// the origin for a body without nodes.
func (b *Body) BoundingBox() (lo, hi r3.Vec) {
	if b.NumNodes() == 0 {
		return
	}
	lo = r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi = r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for i := 0; i < b.NumNodes(); i++ {
		p := b.Node(i)
		lo = r3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = r3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	return
}

func (b *Body) BoundingCenter() r3.Vec {
	lo, hi := b.BoundingBox()
	return r3.Scale(0.5, r3.Add(lo, hi))
}

// Transform moves the nodes; the topology is untouched.
func (b *Body) Transform(m mgl64.Mat4) {
	for i := 0; i < b.NumNodes(); i++ {
		p := mgl64.TransformCoordinate(mgl64.Vec3{b.nodes[3*i], b.nodes[3*i+1], b.nodes[3*i+2]}, m)
		b.nodes[3*i], b.nodes[3*i+1], b.nodes[3*i+2] = p[0], p[1], p[2]
	}
}

// DegenerateGroups counts groups of kind that name the same node twice, which
// happens when distinct vertices of one face were welded together. They are
// kept as is; dropping them is left to the caller.
func (b *Body) DegenerateGroups(kind utils.ElementType) int {
	var buf weld.IndexBuffer
	switch kind {
	case utils.Line:
		buf = b.links
	case utils.Triangle:
		buf = b.faces
	case utils.Tet:
		buf = b.tetras
	default:
		return 0
	}
	var (
		arity = kind.GetNumNodes()
		count int
	)
	for g := 0; g < groupCount(buf, arity); g++ {
	scan:
		for i := 0; i < arity; i++ {
			for j := i + 1; j < arity; j++ {
				if buf.Get(g*arity+i) == buf.Get(g*arity+j) {
					count++
					break scan
				}
			}
		}
	}
	return count
}
