package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/notargets/softweld/InputParameters"
	"github.com/notargets/softweld/weld"
)

// Unit square as two triangles with the diagonal's vertices split
const squareSU2 = `NDIME= 3
NPOIN= 6
0.0 0.0 0.0
1.0 0.0 0.0
0.0 0.0 0.0
1.0 1.0 0.0
1.0 1.0 0.0
0.0 1.0 0.0
NELEM= 2
5 0 1 3
5 2 4 5
`

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))
	return file
}

func parseWeldFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "weld"}
	addWeldFlags(c)
	require.NoError(t, c.ParseFlags(args))
	return c
}

func TestWeldParameters(t *testing.T) {
	meshFile := writeTempFile(t, "square.su2", squareSU2)
	{ // Flags alone
		c := parseWeldFlags(t, "--bending", "3", "-p", "2", "--scale=2", "--translate=0,0,1", "-o", "out.yaml")
		ip, err := weldParameters(c, []string{meshFile})
		require.NoError(t, err)
		assert.Equal(t, meshFile, ip.MeshFile)
		assert.Equal(t, "out.yaml", ip.Output)
		assert.Equal(t, 3, ip.BendingDistance)
		assert.Equal(t, 2, ip.ParallelDegree)
		assert.Equal(t, 2., ip.Scale)
		assert.Equal(t, [3]float64{0, 0, 1}, ip.Translate)
	}
	{ // Flags override the input file, unset flags do not
		input := writeTempFile(t, "weld.yaml", "MeshFile: "+meshFile+"\nBendingDistance: 2\nScale: 3\n")
		c := parseWeldFlags(t, "-I", input, "--scale", "5")
		ip, err := weldParameters(c, nil)
		require.NoError(t, err)
		assert.Equal(t, meshFile, ip.MeshFile)
		assert.Equal(t, 2, ip.BendingDistance)
		assert.Equal(t, 5., ip.Scale)
		assert.Equal(t, 1, ip.ParallelDegree)
	}
	for _, args := range [][]string{
		{"--translate=1,2"},
		{"--translate=1,x,2"},
		{"--bending=1"},
		{"--parallel=0"},
		{"--input", filepath.Join(t.TempDir(), "missing.yaml")},
	} {
		_, err := weldParameters(parseWeldFlags(t, args...), []string{meshFile})
		assert.Error(t, err, args)
	}
	_, err := weldParameters(parseWeldFlags(t), nil)
	assert.Error(t, err)
}

func TestRunWeld(t *testing.T) {
	ip := InputParameters.NewWeldParameters()
	ip.MeshFile = writeTempFile(t, "square.su2", squareSU2)
	ip.Output = filepath.Join(t.TempDir(), "square.yaml")
	ip.BendingDistance = 2
	ip.ParallelDegree = 2
	ip.Scale = 2
	ip.Translate = [3]float64{0, 0, 1}

	body, err := RunWeld(ip, false)
	require.NoError(t, err)
	assert.Equal(t, weld.IndexMap{0, 1, 0, 2, 2, 3}, body.IndexMap())
	assert.Equal(t, []float64{0, 0, 1, 2, 0, 1, 2, 2, 1, 0, 2, 1}, body.NodePositions())
	assert.Equal(t, []int{0, 1, 2, 0, 2, 3}, weld.Values(body.Faces()))
	assert.Equal(t, []int{1, 3}, weld.Values(body.Bending()))

	data, err := os.ReadFile(ip.Output)
	require.NoError(t, err)
	var doc struct {
		Nodes   [][]float64 `yaml:"nodes"`
		Faces   [][]int     `yaml:"faces"`
		Bending [][]int     `yaml:"bending"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Len(t, doc.Nodes, 4)
	assert.Equal(t, [][]int{{0, 1, 2}, {0, 2, 3}}, doc.Faces)
	assert.Equal(t, [][]int{{1, 3}}, doc.Bending)
}

func TestRunWeld_CountInstructions(t *testing.T) {
	// Falls back to a plain build where perf events are not permitted
	ip := InputParameters.NewWeldParameters()
	ip.MeshFile = writeTempFile(t, "square.su2", squareSU2)
	body, err := RunWeld(ip, true)
	require.NoError(t, err)
	assert.Equal(t, 4, body.NumNodes())
}

func TestRunWeld_Errors(t *testing.T) {
	ip := InputParameters.NewWeldParameters()
	ip.MeshFile = writeTempFile(t, "square.obj", squareSU2)
	_, err := RunWeld(ip, false)
	assert.Error(t, err)

	ip.MeshFile = writeTempFile(t, "square.su2", squareSU2)
	ip.Output = filepath.Join(t.TempDir(), "missing", "square.yaml")
	_, err = RunWeld(ip, false)
	assert.Error(t, err)
}

func TestStatsCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"stats", writeTempFile(t, "square.su2", squareSU2)})
	defer rootCmd.SetArgs(nil)
	require.NoError(t, rootCmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "Vertices: 6")
	assert.Contains(t, out, "Triangle: 2")
	assert.Contains(t, out, "Nodes: 4")
	assert.Contains(t, out, "Duplicate vertices: 2")
	assert.Contains(t, out, "Links: 0, Faces: 2, Tetras: 0")
	assert.NotContains(t, out, "Degenerate")
}
