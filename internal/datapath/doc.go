// Package datapath manages the directories consulted when a relative
// resource reference (a mesh, a texture, a nested scene script) has to be
// turned into an absolute path.
//
// Directories is the effective, ordered lookup list shared by every
// component that resolves relative paths. Stack records the directories
// contributed by the currently open import scopes and keeps the effective
// list in sync with them: a directory pushed by several nested scopes stays
// visible until the last of those scopes pops it.
package datapath
