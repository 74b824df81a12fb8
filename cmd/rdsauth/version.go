package main

// Build metadata, overridable at build time using ldflags.
var (
	// Version is the application version.
	Version = "v0.1.0"
	// Commit is the git commit hash.
	Commit = "dev"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)
