// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Mwembed is the canonical application identifier used for filesystem paths and CLI branding.
	Mwembed = "mwembed"

	// Version is the current application semantic version string.
	Version = "0.1.0"
)

// Build metadata, overridden at link time via -ldflags "-X".
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
