package datapath

import (
	"fmt"
	"path/filepath"
	"slices"
)

// Stack records one entry per open import scope and reference-counts the
// directories it contributes to a Visibility. It is not safe for concurrent
// use; it belongs to a single import session.
type Stack struct {
	vis     Visibility
	entries []string
}

// NewStack creates an empty stack feeding vis.
func NewStack(vis Visibility) *Stack {
	return &Stack{vis: vis}
}

// Push records dir and makes it the highest-priority directory.
func (s *Stack) Push(dir string) {
	dir = filepath.Clean(dir)
	s.entries = append(s.entries, dir)
	s.vis.AddDataDirectory(dir, true)
}

// Pop removes the most recent entry for dir. The directory is evicted from
// the Visibility only when no remaining entry references it. Popping a
// directory that was never pushed panics.
func (s *Stack) Pop(dir string) {
	dir = filepath.Clean(dir)

	idx := -1
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i] == dir {
			idx = i
			break
		}
	}
	if idx < 0 {
		panic(fmt.Sprintf("datapath: pop of directory %q that is not on the stack", dir))
	}
	s.entries = slices.Delete(s.entries, idx, idx+1)

	if !slices.Contains(s.entries, dir) {
		s.vis.RemoveDataDirectory(dir)
	}
}

// Len returns the number of recorded entries.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the recorded entries, oldest first.
func (s *Stack) Entries() []string {
	return slices.Clone(s.entries)
}
