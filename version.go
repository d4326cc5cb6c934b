// Package kite analyzes Flutter and Go projects and exports a structured
// context report describing their composition, dependencies, code metrics
// and architecture.
package kite

// Version is stamped into every exported report as cli_version.
const Version = "0.3.0"
