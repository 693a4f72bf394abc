// Package driven defines the capability adapter contracts the evaluation
// core depends on. The core calls these interfaces and nothing else: a
// repository reader, a web search backend, and a persistence store.
// Implementations live under internal/adapters/driven.
package driven
