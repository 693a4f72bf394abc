package driven

import (
	"context"
	"time"
)

// RepoMetadata is the hosting platform's view of a repository.
type RepoMetadata struct {
	// Stars is the stargazer count.
	Stars int

	// Forks is the fork count.
	Forks int

	// OpenIssues is the count of open issues.
	OpenIssues int

	// CreatedAt is when the repository was created.
	CreatedAt time.Time

	// LastUpdatedAt is when the repository last received a push.
	LastUpdatedAt time.Time

	// Description is the repository's short description, if any.
	Description string

	// DefaultBranch is the default branch name.
	DefaultBranch string
}

// Commit is one entry in a repository's history.
type Commit struct {
	// Author is the commit author's login or name.
	Author string

	// Timestamp is the author date.
	Timestamp time.Time

	// Message is the first line of the commit message.
	Message string
}

// CommitRange bounds a ListCommits call.
type CommitRange struct {
	// Since excludes commits older than this time. Zero means unbounded.
	Since time.Time

	// Limit caps the number of commits returned. Zero means adapter default.
	Limit int
}

// ReaderFactory creates a RepositoryReader bound to one repository.
type ReaderFactory interface {
	// Reader returns a reader for the repository identified by owner/name.
	Reader(owner, name string) (RepositoryReader, error)
}

// RepositoryReader reads files, history and metadata for the repository
// under evaluation. Implementations return domain.ErrNotFound (wrapped) for
// missing files and classify retryable failures with domain.Transient.
type RepositoryReader interface {
	// GetFile returns the content of the file at path on the default branch.
	GetFile(ctx context.Context, path string) (string, error)

	// ListFiles returns the repository tree paths, most shallow first.
	// Used by the code-review stage to pick source files to sweep.
	ListFiles(ctx context.Context) ([]string, error)

	// ListCommits returns commits in the range, newest first.
	ListCommits(ctx context.Context, r CommitRange) ([]Commit, error)

	// GetMetadata returns the platform metadata for the repository.
	GetMetadata(ctx context.Context) (*RepoMetadata, error)
}
