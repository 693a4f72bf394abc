// Package sqlite implements the EvaluationStore port on SQLite.
//
// The adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. Evaluations and reports
// are stored as one row each, with stage and section data serialised to
// JSON columns; identity, repository and timestamp fields stay relational
// for querying.
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. By default the database lives at
// ~/.repovet/data/repovet.db. All operations are thread-safe through
// SQLite's own locking in WAL mode.
package sqlite
