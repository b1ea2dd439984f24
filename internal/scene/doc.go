// Package scene provides the destination object populated by scene scripts.
//
// A Builder collects nodes and materials together with a small set of
// builder-local Settings. Settings are plain values: callers receive copies
// from Builder.Settings and install them again with Builder.SetSettings,
// which is how an import scope restores the settings it observed on entry.
package scene
