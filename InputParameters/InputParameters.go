package InputParameters

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file of a weld run
type WeldParameters struct {
	Title           string     `yaml:"Title"`
	MeshFile        string     `yaml:"MeshFile"`
	Output          string     `yaml:"Output"`
	BendingDistance int        `yaml:"BendingDistance"` // 0 disables bending links
	ParallelDegree  int        `yaml:"ParallelDegree"`
	Scale           float64    `yaml:"Scale"`
	Translate       [3]float64 `yaml:"Translate"`
}

func NewWeldParameters() *WeldParameters {
	return &WeldParameters{
		ParallelDegree: 1,
		Scale:          1,
	}
}

func (ip *WeldParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ip); err != nil {
		return err
	}
	return ip.Validate()
}

func ReadWeldParameters(filename string) (*WeldParameters, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	ip := NewWeldParameters()
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return ip, nil
}

func (ip *WeldParameters) Validate() error {
	switch {
	case ip.BendingDistance == 1 || ip.BendingDistance < 0:
		return fmt.Errorf("BendingDistance must be 0 or at least 2, got %d", ip.BendingDistance)
	case ip.ParallelDegree < 1:
		return fmt.Errorf("ParallelDegree must be positive, got %d", ip.ParallelDegree)
	case ip.Scale == 0:
		return fmt.Errorf("Scale must be non zero")
	}
	return nil
}

// IsIdentityTransform reports whether Scale and Translate leave nodes in place
func (ip *WeldParameters) IsIdentityTransform() bool {
	return ip.Scale == 1 && ip.Translate == [3]float64{}
}

func (ip *WeldParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t= MeshFile\n", ip.MeshFile)
	fmt.Printf("[%s]\t\t= Output\n", ip.Output)
	fmt.Printf("[%d]\t\t\t\t= Bending Distance\n", ip.BendingDistance)
	fmt.Printf("[%d]\t\t\t\t= Parallel Degree\n", ip.ParallelDegree)
	fmt.Printf("%8.5f\t\t= Scale\n", ip.Scale)
	fmt.Printf("%v\t\t= Translate\n", ip.Translate)
}
