// Package driving defines the contracts driving adapters (CLI, MCP) use to
// run evaluations and fetch results.
package driving
