package nodeid

import (
	"slices"
	"strconv"
	"strings"
)

// String serializes the Address into its canonical representation.
func (a *Address) String() string {
	if a == nil {
		return ""
	}

	var sb strings.Builder
	for i, segment := range a.Path {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(segment.Name)
		if segment.HasIndex() {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(segment.Index))
			sb.WriteByte(']')
		}
	}
	return sb.String()
}

// Equal checks for deep equality between two addresses.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	return slices.Equal(a.Path, other.Path)
}

// Parent returns the address without its last segment, or nil for a
// single-segment address.
func (a *Address) Parent() *Address {
	if a == nil || len(a.Path) < 2 {
		return nil
	}
	return &Address{Path: slices.Clone(a.Path[:len(a.Path)-1])}
}

// Leaf returns the last segment of the address.
func (a *Address) Leaf() Segment {
	return a.Path[len(a.Path)-1]
}
