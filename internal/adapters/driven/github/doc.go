// Package github implements the RepositoryReader capability over the
// GitHub REST API using google/go-github. One Reader is bound to one
// repository; the Factory creates readers sharing a client, token and rate
// limiter. Transient API failures (rate limits, 5xx, timeouts) are wrapped
// with domain.Transient so the orchestrator retries them.
package github
