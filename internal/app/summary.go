package app

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/vk/scenegridgo/internal/scene"
)

// writeSummary prints the content of builder, materials and nodes sorted
// by name.
func writeSummary(w io.Writer, path string, b *scene.Builder) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "scene %s: %d nodes, %d materials\n", path, b.NodeCount(), b.MaterialCount())

	for _, m := range b.Materials() {
		fmt.Fprintf(&sb, "  material %s base_color=%v roughness=%g\n", m.Name, m.BaseColor, m.Roughness)
	}

	nodes := b.Nodes()
	slices.SortFunc(nodes, func(x, y scene.Node) int {
		return strings.Compare(x.Address.String(), y.Address.String())
	})
	for _, n := range nodes {
		fmt.Fprintf(&sb, "  node %s material=%s translation=%v scale=%g", n.Address.String(), n.Material, n.Translation, n.Scale)
		if n.Mesh != "" {
			fmt.Fprintf(&sb, " mesh=%s", n.Mesh)
		}
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
