package mesh

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/notargets/softweld/utils"
	"github.com/notargets/softweld/weld"
)

// Mesh is a mesh as read from disk: vertices in file order, possibly with
// several vertices at one position, and elements referencing them.
type Mesh struct {
	// Geometry
	Vertices [][]float64 // Vertex coordinates [nvertices][3]

	// Element data
	EtoV         [][]int             // Element to vertex connectivity [nelems][nverts_per_elem]
	ElementTypes []utils.ElementType // Element type for each element
	ElementTags  []int               // Physical group/tag for each element

	NodeIDMap map[int]int // File node ID -> array index

	NumElements int
	NumVertices int
}

// NewMesh creates an empty mesh
func NewMesh() *Mesh {
	return &Mesh{
		NodeIDMap: make(map[int]int),
	}
}

// ReadMeshFile reads a mesh file based on extension
func ReadMeshFile(filename string) (*Mesh, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".neu":
		return ReadGambitNeutral(filename)
	case ".msh":
		return ReadGmsh22(filename)
	case ".su2":
		return ReadSU2(filename)
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", ext)
	}
}

// AddNode appends a vertex known in the file as nodeID
func (m *Mesh) AddNode(nodeID int, coords []float64) error {
	if _, exists := m.NodeIDMap[nodeID]; exists {
		return fmt.Errorf("duplicate node ID %d", nodeID)
	}
	xyz := make([]float64, 3) // Always store 3D coordinates
	copy(xyz, coords)
	m.NodeIDMap[nodeID] = len(m.Vertices)
	m.Vertices = append(m.Vertices, xyz)
	m.NumVertices = len(m.Vertices)
	return nil
}

// AddElement appends an element whose nodes are given as file node IDs
func (m *Mesh) AddElement(etype utils.ElementType, tag int, nodeIDs []int) error {
	if len(nodeIDs) != etype.GetNumNodes() {
		return fmt.Errorf("element type %v expects %d nodes, got %d",
			etype, etype.GetNumNodes(), len(nodeIDs))
	}
	verts := make([]int, len(nodeIDs))
	for j, id := range nodeIDs {
		idx, ok := m.NodeIDMap[id]
		if !ok {
			return fmt.Errorf("element %d references unknown node %d", len(m.EtoV), id)
		}
		verts[j] = idx
	}
	m.EtoV = append(m.EtoV, verts)
	m.ElementTypes = append(m.ElementTypes, etype)
	m.ElementTags = append(m.ElementTags, tag)
	m.NumElements = len(m.EtoV)
	return nil
}

// Positions flattens the vertices into an interleaved xyz buffer
func (m *Mesh) Positions() []float64 {
	positions := make([]float64, 0, 3*len(m.Vertices))
	for _, v := range m.Vertices {
		positions = append(positions, v[0], v[1], v[2])
	}
	return positions
}

// Connectivity splits the elements into link, face and tetrahedron buffers in
// original vertex indices. Quads are split into two triangles along 0-2.
// Buffers with no entries are returned as nil.
func (m *Mesh) Connectivity() (links, faces, tetras weld.IndexBuffer, err error) {
	var l, f, tt []int
	for k, verts := range m.EtoV {
		switch m.ElementTypes[k] {
		case utils.Point:
		case utils.Line:
			l = append(l, verts...)
		case utils.Triangle:
			f = append(f, verts...)
		case utils.Quad:
			f = append(f, verts[0], verts[1], verts[2], verts[0], verts[2], verts[3])
		case utils.Tet:
			tt = append(tt, verts...)
		default:
			return nil, nil, nil, fmt.Errorf("element %d: %v has no soft body representation",
				k, m.ElementTypes[k])
		}
	}
	if links, err = toBuffer(l); err != nil {
		return
	}
	if faces, err = toBuffer(f); err != nil {
		return
	}
	tetras, err = toBuffer(tt)
	return
}

func toBuffer(values []int) (weld.IndexBuffer, error) {
	if len(values) == 0 {
		return nil, nil
	}
	return weld.NewIndexBufferFrom(values)
}

// Statistics summarizes vertex, element and element type counts
func (m *Mesh) Statistics() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Mesh Statistics:\n")
	fmt.Fprintf(&sb, "  Vertices: %d\n", m.NumVertices)
	fmt.Fprintf(&sb, "  Elements: %d\n", m.NumElements)

	// Count element types in enum order
	typeCounts := make(map[utils.ElementType]int)
	for _, t := range m.ElementTypes {
		typeCounts[t]++
	}
	fmt.Fprintf(&sb, "  Element types:\n")
	for t := utils.Point; t <= utils.Pyramid; t++ {
		if count := typeCounts[t]; count > 0 {
			fmt.Fprintf(&sb, "    %s: %d\n", t, count)
		}
	}
	return sb.String()
}
