// Package importer runs scene scripts against a scene.Builder and lets
// those scripts import further scripts.
//
// Every call to Importer.ImportScene opens one Scope for the duration of the
// script. Opening a scope claims the script path in the session's cycle
// guard, pushes the script directory onto the data search path and makes
// the (builder, settings) pair the active execution context. Closing undoes
// all of it in reverse order and restores the builder settings observed on
// entry. Scopes are closed with defer, so a failure or panic at any nesting
// depth unwinds every open scope before it reaches the caller.
//
// The mutable state of one import tree lives in a Session. The outermost
// ImportScene call creates it and threads it through context.Context, which
// is how nested calls made by the script engine find it again. Top-level
// imports on one Importer are serialized; the data directories and the
// active builder (scene.SetActive) are process-wide.
package importer
