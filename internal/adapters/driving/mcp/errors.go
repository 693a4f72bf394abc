// Package mcp provides an MCP (Model Context Protocol) server adapter for
// repovet. It lets agent runtimes drive repository evaluations and fetch
// finished reports as tools.
package mcp

import "errors"

// ErrMissingEvaluator is returned when the evaluator port is not provided.
var ErrMissingEvaluator = errors.New("mcp: evaluator is required")

// ErrMissingStore is returned when the evaluation store is not provided.
var ErrMissingStore = errors.New("mcp: evaluation store is required")
