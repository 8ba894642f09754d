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

// gambitElementTypeMap maps Gambit NTYPE codes to our ElementType
var gambitElementTypeMap = map[int]utils.ElementType{
	1: utils.Line,     // Edge
	2: utils.Quad,     // Quadrilateral
	3: utils.Triangle, // Triangle
	4: utils.Hex,      // Brick
	5: utils.Prism,    // Wedge
	6: utils.Tet,      // Tetrahedron
	7: utils.Pyramid,  // Pyramid
}

// ReadGambitNeutral reads a Gambit neutral file
func ReadGambitNeutral(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readGambitNeutral(file)
}

func readGambitNeutral(r io.Reader) (*Mesh, error) {
	var (
		msh          = NewMesh()
		scanner      = bufio.NewScanner(r)
		numnp, nelem int
		hasControl   bool
	)

	// Read control info section
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.Contains(line, "NUMNP") && strings.Contains(line, "NELEM") {
			// Next line contains the actual values
			if !scanner.Scan() {
				return nil, fmt.Errorf("unexpected EOF after control header")
			}
			values := strings.Fields(scanner.Text())
			if len(values) < 2 {
				return nil, fmt.Errorf("invalid control line: %s", scanner.Text())
			}
			numnp, _ = strconv.Atoi(values[0])
			nelem, _ = strconv.Atoi(values[1])
			hasControl = true
			break
		}
	}
	if !hasControl {
		return nil, fmt.Errorf("missing NUMNP/NELEM control header")
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.Contains(line, "NODAL COORDINATES") {
			for i := 0; i < numnp; i++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF reading nodes")
				}
				fields := strings.Fields(scanner.Text())
				if len(fields) < 3 {
					return nil, fmt.Errorf("invalid node line: %s", scanner.Text())
				}
				nodeID, err := strconv.Atoi(fields[0])
				if err != nil {
					return nil, fmt.Errorf("invalid node ID: %v", err)
				}
				coords := make([]float64, len(fields)-1)
				for j := range coords {
					if coords[j], err = strconv.ParseFloat(fields[1+j], 64); err != nil {
						return nil, fmt.Errorf("invalid coordinate: %v", err)
					}
				}
				if err = msh.AddNode(nodeID, coords); err != nil {
					return nil, err
				}
			}

		} else if strings.Contains(line, "ELEMENTS/CELLS") {
			for i := 0; i < nelem; i++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF reading elements")
				}
				fields := strings.Fields(scanner.Text())
				if len(fields) < 3 {
					return nil, fmt.Errorf("invalid element line: %s", scanner.Text())
				}
				gambitType, _ := strconv.Atoi(fields[1])
				numNodes, _ := strconv.Atoi(fields[2])
				etype, ok := gambitElementTypeMap[gambitType]
				if !ok {
					return nil, fmt.Errorf("unknown Gambit element type: %d", gambitType)
				}
				// Long elements wrap onto continuation lines
				for len(fields) < 3+numNodes {
					if !scanner.Scan() {
						return nil, fmt.Errorf("unexpected EOF reading element nodes")
					}
					fields = append(fields, strings.Fields(scanner.Text())...)
				}
				nodeIDs := make([]int, numNodes)
				for j := 0; j < numNodes; j++ {
					nodeIDs[j], _ = strconv.Atoi(fields[3+j])
				}
				if err := msh.AddElement(etype, 0, nodeIDs); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %v", err)
	}
	return msh, nil
}
