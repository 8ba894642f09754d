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

// gmshElementTypeMap maps Gmsh 2.2 element type numbers to our ElementType
var gmshElementTypeMap = map[int]utils.ElementType{
	1:  utils.Line,
	2:  utils.Triangle,
	3:  utils.Quad,
	4:  utils.Tet,
	5:  utils.Hex,
	6:  utils.Prism,
	7:  utils.Pyramid,
	15: utils.Point,
}

// ReadGmsh22 reads a Gmsh MSH file format version 2.2 (ASCII)
func ReadGmsh22(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readGmsh22(file)
}

func readGmsh22(r io.Reader) (*Mesh, error) {
	scanner := bufio.NewScanner(r)
	msh := NewMesh()
	var hasFormat bool

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "$MeshFormat":
			if err := readMeshFormat22(scanner); err != nil {
				return nil, err
			}
			hasFormat = true

		case "$Nodes":
			if err := readNodes22(scanner, msh); err != nil {
				return nil, err
			}

		case "$Elements":
			if err := readElements22(scanner, msh); err != nil {
				return nil, err
			}

		default:
			if strings.HasPrefix(line, "$") && !strings.HasPrefix(line, "$End") {
				// Skip sections we do not use
				endMarker := "$End" + line[1:]
				for scanner.Scan() {
					if strings.TrimSpace(scanner.Text()) == endMarker {
						break
					}
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %v", err)
	}
	if !hasFormat {
		return nil, fmt.Errorf("could not find $MeshFormat section")
	}
	return msh, nil
}

// readMeshFormat22 reads the MeshFormat section
func readMeshFormat22(scanner *bufio.Scanner) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in MeshFormat")
	}
	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return fmt.Errorf("invalid MeshFormat line")
	}
	if !strings.HasPrefix(parts[0], "2.") {
		return fmt.Errorf("unsupported Gmsh format version: %s", parts[0])
	}
	if parts[1] != "0" {
		return fmt.Errorf("binary Gmsh files are not supported")
	}
	return expectEnd(scanner, "$EndMeshFormat")
}

// readNodes22 reads the Nodes section
func readNodes22(scanner *bufio.Scanner, msh *Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF reading node count")
	}
	numNodes, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid node count: %v", err)
	}
	for i := 0; i < numNodes; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading nodes")
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			return fmt.Errorf("invalid node line: %s", scanner.Text())
		}
		nodeID, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("invalid node ID: %v", err)
		}
		coords := make([]float64, 3)
		for j := 0; j < 3; j++ {
			if coords[j], err = strconv.ParseFloat(fields[1+j], 64); err != nil {
				return fmt.Errorf("invalid coordinate: %v", err)
			}
		}
		if err = msh.AddNode(nodeID, coords); err != nil {
			return err
		}
	}
	return expectEnd(scanner, "$EndNodes")
}

// readElements22 reads the Elements section
func readElements22(scanner *bufio.Scanner, msh *Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF reading element count")
	}
	numElems, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid element count: %v", err)
	}
	for i := 0; i < numElems; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading elements")
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			return fmt.Errorf("invalid element line: %s", scanner.Text())
		}
		gmshType, _ := strconv.Atoi(fields[1])
		etype, ok := gmshElementTypeMap[gmshType]
		if !ok {
			return fmt.Errorf("unsupported Gmsh element type: %d", gmshType)
		}
		numTags, _ := strconv.Atoi(fields[2])
		physTag := 0
		if numTags > 0 && len(fields) > 3 {
			physTag, _ = strconv.Atoi(fields[3])
		}

		offset := 3 + numTags
		numNodes := etype.GetNumNodes()
		if len(fields) < offset+numNodes {
			return fmt.Errorf("element type %v expects %d nodes", etype, numNodes)
		}
		nodeIDs := make([]int, numNodes)
		for j := 0; j < numNodes; j++ {
			if nodeIDs[j], err = strconv.Atoi(fields[offset+j]); err != nil {
				return fmt.Errorf("invalid node ID: %v", err)
			}
		}
		if err = msh.AddElement(etype, physTag, nodeIDs); err != nil {
			return err
		}
	}
	return expectEnd(scanner, "$EndElements")
}

func expectEnd(scanner *bufio.Scanner, marker string) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF, expected %s", marker)
	}
	if line := strings.TrimSpace(scanner.Text()); line != marker {
		return fmt.Errorf("expected %s, got: %s", marker, line)
	}
	return nil
}
