// Package file provides the TOML configuration store for repovet.
// Configuration lives at ~/.repovet/config.toml and holds the GitHub token,
// the web-search credentials, and optional scoring rubric overrides.
package file
