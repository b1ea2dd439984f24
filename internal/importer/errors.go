package importer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPath is returned for script paths that are not absolute.
	ErrInvalidPath = errors.New("expected absolute path")
	// ErrRecursiveImport is returned when a script is imported while it is
	// already being imported further up the chain.
	ErrRecursiveImport = errors.New("scene is imported recursively")
	// ErrReadScript is returned when the script file cannot be read.
	ErrReadScript = errors.New("failed to read scene script")
	// ErrUnsupportedFormat is returned for scripts using the retired
	// `# name.ext` header line.
	ErrUnsupportedFormat = errors.New("scene script is using the old header comment syntax, use the 'scene_builder' object instead")
	// ErrScriptExecution is returned when the script engine fails.
	ErrScriptExecution = errors.New("failed to run scene script")
)

// ImportError reports a failed import of Path. Kind is one of the package
// sentinel errors; Cause, when set, is the underlying failure.
type ImportError struct {
	Path   string
	Kind   error
	Detail string
	Cause  error
}

// Error implements the error interface.
func (e *ImportError) Error() string {
	msg := fmt.Sprintf("import %q: %v", e.Path, e.Kind)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *ImportError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}
