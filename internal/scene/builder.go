package scene

import (
	"fmt"
	"sort"

	"github.com/vk/scenegridgo/internal/nodeid"
)

// Node is a single placed object in the scene.
type Node struct {
	Address     nodeid.Address
	Mesh        string
	Material    string
	Translation [3]float64
	Scale       float64
	// Source is the script that added the node.
	Source string
}

// Material is a named surface description referenced by nodes.
type Material struct {
	Name      string
	BaseColor [3]float64
	Roughness float64
	Source    string
}

// Builder accumulates the content of one scene. It is not safe for
// concurrent use.
type Builder struct {
	settings  Settings
	nodes     []Node
	nodeIndex map[string]int
	materials map[string]Material
}

// NewBuilder creates an empty builder with the given settings.
func NewBuilder(settings Settings) *Builder {
	return &Builder{
		settings:  settings.Clone(),
		nodeIndex: make(map[string]int),
		materials: make(map[string]Material),
	}
}

// Settings returns a copy of the current settings.
func (b *Builder) Settings() Settings {
	return b.settings.Clone()
}

// SetSettings replaces the current settings with a copy of s.
func (b *Builder) SetSettings(s Settings) {
	b.settings = s.Clone()
}

// AddNode places a node using the current settings: the node scale is
// multiplied by UnitScale and an empty material falls back to
// DefaultMaterial.
func (b *Builder) AddNode(n Node) error {
	key := n.Address.String()
	if key == "" {
		return fmt.Errorf("node must have an address")
	}
	if _, exists := b.nodeIndex[key]; exists {
		return fmt.Errorf("node %q is already defined", key)
	}

	if n.Scale == 0 {
		n.Scale = 1
	}
	n.Scale *= b.settings.UnitScale
	for i := range n.Translation {
		n.Translation[i] *= b.settings.UnitScale
	}
	if n.Material == "" {
		n.Material = b.settings.DefaultMaterial
	}

	b.nodeIndex[key] = len(b.nodes)
	b.nodes = append(b.nodes, n)
	return nil
}

// AddMaterial registers a material. Redefining a material is an error.
func (b *Builder) AddMaterial(m Material) error {
	if m.Name == "" {
		return fmt.Errorf("material must have a name")
	}
	if prev, exists := b.materials[m.Name]; exists {
		return fmt.Errorf("material %q is already defined in %s", m.Name, prev.Source)
	}
	b.materials[m.Name] = m
	return nil
}

// Node returns the node stored under addr.
func (b *Builder) Node(addr string) (Node, bool) {
	idx, ok := b.nodeIndex[addr]
	if !ok {
		return Node{}, false
	}
	return b.nodes[idx], true
}

// Nodes returns the nodes in insertion order.
func (b *Builder) Nodes() []Node {
	out := make([]Node, len(b.nodes))
	copy(out, b.nodes)
	return out
}

// Materials returns the materials sorted by name.
func (b *Builder) Materials() []Material {
	out := make([]Material, 0, len(b.materials))
	for _, m := range b.materials {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// NodeCount returns the number of nodes added so far.
func (b *Builder) NodeCount() int {
	return len(b.nodes)
}

// MaterialCount returns the number of materials added so far.
func (b *Builder) MaterialCount() int {
	return len(b.materials)
}
