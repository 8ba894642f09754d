package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/softweld/utils"
)

// su2ElementTypeMap maps SU2/VTK element type identifiers to our ElementType
var su2ElementTypeMap = map[int]utils.ElementType{
	1:  utils.Point,    // VTK_VERTEX
	3:  utils.Line,     // VTK_LINE
	5:  utils.Triangle, // VTK_TRIANGLE
	9:  utils.Quad,     // VTK_QUAD
	10: utils.Tet,      // VTK_TETRA
	12: utils.Hex,      // VTK_HEXAHEDRON
	13: utils.Prism,    // VTK_WEDGE
	14: utils.Pyramid,  // VTK_PYRAMID
}

// ReadSU2 reads an SU2 native format file
func ReadSU2(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readSU2(file)
}

func readSU2(r io.Reader) (*Mesh, error) {
	var (
		msh               = NewMesh()
		scanner           = bufio.NewScanner(r)
		ndime             int
		hasNDIME, hasNPOI bool
		elements          [][]string
	)

	for scanner.Scan() {
		line := stripSU2Comment(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "NDIME=") {
			hasNDIME = true
			fmt.Sscanf(line, "NDIME=%d", &ndime)
			if ndime != 2 && ndime != 3 {
				return nil, fmt.Errorf("unsupported dimension: NDIME=%d", ndime)
			}

		} else if strings.HasPrefix(line, "NPOIN=") {
			if !hasNDIME {
				return nil, fmt.Errorf("NPOIN= before NDIME=")
			}
			hasNPOI = true
			var npoin int
			fmt.Sscanf(line, "NPOIN=%d", &npoin)

			for i := 0; i < npoin; i++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF reading nodes")
				}
				fields := strings.Fields(scanner.Text())
				if len(fields) < ndime {
					return nil, fmt.Errorf("invalid node line: expected at least %d coordinates", ndime)
				}
				coords := make([]float64, ndime)
				for j := 0; j < ndime; j++ {
					var err error
					if coords[j], err = strconv.ParseFloat(fields[j], 64); err != nil {
						return nil, fmt.Errorf("invalid coordinate: %v", err)
					}
				}
				// Node ID is implicit (0-based) based on order, a trailing
				// explicit ID in legacy files is ignored
				if err := msh.AddNode(i, coords); err != nil {
					return nil, err
				}
			}

		} else if strings.HasPrefix(line, "NELEM=") {
			var nelem int
			fmt.Sscanf(line, "NELEM=%d", &nelem)

			// Elements may precede the points, resolve them afterwards
			for i := 0; i < nelem; i++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF reading elements")
				}
				fields := strings.Fields(scanner.Text())
				if len(fields) < 2 {
					return nil, fmt.Errorf("invalid element line")
				}
				elements = append(elements, fields)
			}

		} else if strings.HasPrefix(line, "NMARK=") {
			// Boundary markers duplicate volume connectivity and are skipped
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %v", err)
	}
	if !hasNDIME {
		return nil, fmt.Errorf("missing required NDIME= section")
	}
	if !hasNPOI {
		return nil, fmt.Errorf("missing required NPOIN= section")
	}

	for _, fields := range elements {
		su2Type, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("invalid element type: %v", err)
		}
		etype, ok := su2ElementTypeMap[su2Type]
		if !ok {
			return nil, fmt.Errorf("unknown element type: %d", su2Type)
		}
		numNodes := etype.GetNumNodes()
		if len(fields) < numNodes+1 {
			return nil, fmt.Errorf("element type %v expects %d nodes, got %d fields",
				etype, numNodes, len(fields)-1)
		}
		nodes := make([]int, numNodes)
		for j := 0; j < numNodes; j++ {
			if nodes[j], err = strconv.Atoi(fields[1+j]); err != nil {
				return nil, fmt.Errorf("invalid node index: %v", err)
			}
		}
		if err = msh.AddElement(etype, 0, nodes); err != nil {
			return nil, err
		}
	}

	return msh, nil
}

func stripSU2Comment(line string) string {
	if idx := strings.Index(line, "%"); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}
