// Package cli turns the scenegrid command line into an app.Config and maps
// usage problems to process exit codes.
package cli
