package mesh

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/softweld/utils"
	"github.com/notargets/softweld/weld"
)

// Helper function to create temporary test files
func createTempMeshFile(t *testing.T, name, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	return tmpFile
}

// Unit square as two triangles exported with split seam vertices along the
// diagonal: nodes 2 and 4 sit on 0 and 3's positions respectively.
const seamSU2 = `% two triangles with a hard edge on the diagonal
NDIME= 3
NELEM= 2
5 0 1 3 0
5 2 4 5 1
NPOIN= 6
0.0 0.0 0.0 0
1.0 0.0 0.0 1
0.0 0.0 0.0 2
1.0 1.0 0.0 3
1.0 1.0 0.0 4
0.0 1.0 0.0 5
NMARK= 1
MARKER_TAG= edge
MARKER_ELEMS= 1
3 0 1
`

func TestReadSU2_Seam(t *testing.T) {
	msh, err := ReadSU2(createTempMeshFile(t, "seam.su2", seamSU2))
	require.NoError(t, err)
	assert.Equal(t, 6, msh.NumVertices)
	assert.Equal(t, 2, msh.NumElements)
	assert.Equal(t, []utils.ElementType{utils.Triangle, utils.Triangle}, msh.ElementTypes)
	assert.Equal(t, [][]int{{0, 1, 3}, {2, 4, 5}}, msh.EtoV)

	links, faces, tetras, err := msh.Connectivity()
	require.NoError(t, err)
	assert.Nil(t, links)
	assert.Nil(t, tetras)
	assert.Equal(t, []int{0, 1, 3, 2, 4, 5}, weld.Values(faces))

	m, err := weld.BuildIndexMap(msh.Positions())
	require.NoError(t, err)
	assert.Equal(t, weld.IndexMap{0, 1, 0, 2, 2, 3}, m)
}

func TestReadSU2_Errors(t *testing.T) {
	cases := map[string]string{
		"missing NDIME": "NPOIN= 1\n0 0 0\n",
		"bad dimension": "NDIME= 4\n",
		"missing NPOIN": "NDIME= 2\nNELEM= 0\n",
		"short points":  "NDIME= 3\nNPOIN= 2\n0 0 0\n",
		"unknown type":  "NDIME= 2\nNPOIN= 1\n0 0\nNELEM= 1\n99 0\n",
		"bad reference": "NDIME= 2\nNPOIN= 2\n0 0\n1 0\nNELEM= 1\n3 0 2\n",
		"short element": "NDIME= 2\nNPOIN= 2\n0 0\n1 0\nNELEM= 1\n5 0 1\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := readSU2(strings.NewReader(content))
			assert.Error(t, err)
		})
	}
}

func TestReadSU2_TwoDimensional(t *testing.T) {
	msh, err := readSU2(strings.NewReader("NDIME= 2\nNPOIN= 2\n1.5 2.5\n3 4\nNELEM= 1\n3 0 1\n"))
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1.5, 2.5, 0}, {3, 4, 0}}, msh.Vertices)
	links, _, _, err := msh.Connectivity()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, weld.Values(links))
}

// Two tets sharing a face, where the second tet was meshed with its own copy
// of the shared nodes (tags 5, 6, 7 duplicate 2, 3, 4).
const twoTetGmsh = `$MeshFormat
2.2 0 8
$EndMeshFormat
$PhysicalNames
1
3 1 "body"
$EndPhysicalNames
$Nodes
8
1 0 0 0
2 1 0 0
3 0 1 0
4 0 0 1
5 1 0 0
6 0 1 0
7 0 0 1
8 1 1 1
$EndNodes
$Elements
4
1 15 2 0 1 1
2 1 2 0 1 1 2
3 4 2 1 1 1 2 3 4
4 4 2 1 1 5 6 7 8
$EndElements
`

func TestReadGmsh22_TwoTets(t *testing.T) {
	msh, err := ReadMeshFile(createTempMeshFile(t, "twotet.msh", twoTetGmsh))
	require.NoError(t, err)
	assert.Equal(t, 8, msh.NumVertices)
	assert.Equal(t, 4, msh.NumElements)
	assert.Equal(t, []int{0, 0, 1, 1}, msh.ElementTags)

	links, faces, tetras, err := msh.Connectivity()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, weld.Values(links))
	assert.Nil(t, faces)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, weld.Values(tetras))

	m, compacted, err := weld.Weld(msh.Positions())
	require.NoError(t, err)
	assert.Equal(t, weld.IndexMap{0, 1, 2, 3, 1, 2, 3, 4}, m)
	assert.Equal(t, 15, len(compacted))

	remapped := weld.NewIndexBuffer(m.Count()-1, tetras.Len())
	require.NoError(t, weld.RemapGroups(m, utils.Tet, tetras, remapped))
	assert.Equal(t, []int{0, 1, 2, 3, 1, 2, 3, 4}, weld.Values(remapped))

	assert.Contains(t, msh.Statistics(), "Tet: 2")
}

func TestReadGmsh22_Errors(t *testing.T) {
	cases := map[string]string{
		"no format":      "$Nodes\n0\n$EndNodes\n",
		"version 4":      "$MeshFormat\n4.1 0 8\n$EndMeshFormat\n",
		"binary":         "$MeshFormat\n2.2 1 8\n$EndMeshFormat\n",
		"duplicate node": "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n$Nodes\n2\n1 0 0 0\n1 1 0 0\n$EndNodes\n",
		"missing end":    "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n$Nodes\n1\n1 0 0 0\n$Elements\n",
		"unknown node":   "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n$Nodes\n1\n1 0 0 0\n$EndNodes\n$Elements\n1\n1 1 0 1 9\n$EndElements\n",
		"unknown type":   "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n$Nodes\n1\n1 0 0 0\n$EndNodes\n$Elements\n1\n1 11 0 1\n$EndElements\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := readGmsh22(strings.NewReader(content))
			assert.Error(t, err)
		})
	}
}

const quadGambit = `        CONTROL INFO 2.0.0
** GAMBIT NEUTRAL FILE
quad strip
PROGRAM:                  Gmsh     VERSION:  4.13.1
Sat Jun  7 21:41:35 2025
     NUMNP     NELEM     NGRPS    NBSETS     NDFCD     NDFVL
         6         2         1         0         2         2
ENDOFSECTION
   NODAL COORDINATES 2.0.0
         1   0.00000000000e+00   0.00000000000e+00
         2   1.00000000000e+00   0.00000000000e+00
         3   1.00000000000e+00   1.00000000000e+00
         4   0.00000000000e+00   1.00000000000e+00
         5   1.00000000000e+00   0.00000000000e+00
         6   1.00000000000e+00   1.00000000000e+00
ENDOFSECTION
   ELEMENTS/CELLS 2.0.0
         1         2         4         1         2         3         4
         2         3         3         5         6         3
ENDOFSECTION
`

func TestReadGambitNeutral_Quad(t *testing.T) {
	msh, err := ReadMeshFile(createTempMeshFile(t, "quad.neu", quadGambit))
	require.NoError(t, err)
	assert.Equal(t, 6, msh.NumVertices)
	assert.Equal(t, []utils.ElementType{utils.Quad, utils.Triangle}, msh.ElementTypes)
	assert.Equal(t, []float64{1, 1, 0}, msh.Vertices[5])

	_, faces, _, err := msh.Connectivity()
	require.NoError(t, err)
	// Quad split along its 0-2 diagonal, then the triangle
	assert.Equal(t, []int{0, 1, 2, 0, 2, 3, 4, 5, 2}, weld.Values(faces))

	_, err = readGambitNeutral(strings.NewReader("no header here\n"))
	assert.Error(t, err)
}

func TestReadMeshFile_Unsupported(t *testing.T) {
	_, err := ReadMeshFile("mesh.obj")
	assert.EqualError(t, err, "unsupported mesh format: .obj")
	_, err = ReadMeshFile(filepath.Join(t.TempDir(), "missing.su2"))
	assert.Error(t, err)
}

func TestConnectivity_UnsupportedElement(t *testing.T) {
	msh := NewMesh()
	for i := 0; i < 8; i++ {
		require.NoError(t, msh.AddNode(i, []float64{float64(i), 0, 0}))
	}
	require.NoError(t, msh.AddElement(utils.Hex, 0, []int{0, 1, 2, 3, 4, 5, 6, 7}))
	_, _, _, err := msh.Connectivity()
	assert.Error(t, err)
	assert.Error(t, msh.AddElement(utils.Tet, 0, []int{0, 1, 2}))
}
