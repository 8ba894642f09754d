package softbody

import (
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/notargets/softweld/weld"
)

// flowSeq renders one node or one group on a single line.
type flowSeq []string

func (f flowSeq) MarshalYAML() (interface{}, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range f {
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: v})
	}
	return n, nil
}

type topologyDocument struct {
	Nodes      []flowSeq `yaml:"nodes"`
	Links      []flowSeq `yaml:"links,omitempty"`
	Faces      []flowSeq `yaml:"faces,omitempty"`
	Tetras     []flowSeq `yaml:"tetras,omitempty"`
	Bending    []flowSeq `yaml:"bending,omitempty"`
	IndexWidth int       `yaml:"index_width"`
	IndexMap   []int     `yaml:"index_map,flow"`
}

// formatCoord spells non-finite values the way YAML reads them back as floats.
func formatCoord(v float64) string {
	switch {
	case math.IsNaN(v):
		return ".nan"
	case math.IsInf(v, 1):
		return ".inf"
	case math.IsInf(v, -1):
		return "-.inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func groupSeqs(buf weld.IndexBuffer, arity int) (seqs []flowSeq) {
	for g := 0; g < groupCount(buf, arity); g++ {
		s := make(flowSeq, arity)
		for i := range s {
			s[i] = strconv.Itoa(buf.Get(g*arity + i))
		}
		seqs = append(seqs, s)
	}
	return
}

// WriteYAML writes the node positions, the remapped connectivity, any bending
// constraints and the index map as a YAML document.
func (b *Body) WriteYAML(w io.Writer) error {
	doc := topologyDocument{
		Nodes:      make([]flowSeq, b.NumNodes()),
		Links:      groupSeqs(b.links, 2),
		Faces:      groupSeqs(b.faces, 3),
		Tetras:     groupSeqs(b.tetras, 4),
		Bending:    groupSeqs(b.bending, 2),
		IndexWidth: weld.Width(weld.NewIndexBuffer(max(b.NumNodes()-1, 0), 0)),
		IndexMap:   b.indexMap,
	}
	for i := range doc.Nodes {
		p := b.Node(i)
		doc.Nodes[i] = flowSeq{formatCoord(p.X), formatCoord(p.Y), formatCoord(p.Z)}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}
