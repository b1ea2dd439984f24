package importer

import (
	"fmt"
	"maps"
	"slices"
)

// cycleGuard is the set of script paths currently being imported.
type cycleGuard struct {
	active map[string]struct{}
}

func newCycleGuard() cycleGuard {
	return cycleGuard{active: make(map[string]struct{})}
}

func (g *cycleGuard) contains(path string) bool {
	_, ok := g.active[path]
	return ok
}

// tryEnter claims path, failing if it is already claimed.
func (g *cycleGuard) tryEnter(path string) error {
	if g.contains(path) {
		return ErrRecursiveImport
	}
	g.active[path] = struct{}{}
	return nil
}

// leave releases a claim. Releasing an unclaimed path panics.
func (g *cycleGuard) leave(path string) {
	if !g.contains(path) {
		panic(fmt.Sprintf("importer: releasing import path %q that was never claimed", path))
	}
	delete(g.active, path)
}

func (g *cycleGuard) paths() []string {
	return slices.Sorted(maps.Keys(g.active))
}
