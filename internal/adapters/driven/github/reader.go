package github

import (
	"context"
	"fmt"
	"sync"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/repovet-cli/internal/core/ports/driven"
)

const (
	// maxBlobSize caps file content fetches (1 MiB).
	maxBlobSize = 1024 * 1024

	// defaultCommitLimit applies when the caller gives no limit.
	defaultCommitLimit = 100

	// commitsPerPage is the API page size for commit listing.
	commitsPerPage = 100
)

// Reader reads one repository through the GitHub API.
type Reader struct {
	client  *gh.Client
	limiter *rateLimiter
	owner   string
	name    string

	mu            sync.Mutex
	defaultBranch string // cached after the first metadata call
}

var _ driven.RepositoryReader = (*Reader)(nil)

// GetMetadata returns the platform metadata for the repository.
func (r *Reader) GetMetadata(ctx context.Context) (*driven.RepoMetadata, error) {
	if err := r.limiter.wait(ctx); err != nil {
		return nil, err
	}
	repo, resp, err := r.client.Repositories.Get(ctx, r.owner, r.name)
	r.observe(resp)
	if err != nil {
		return nil, classify(err)
	}

	r.mu.Lock()
	r.defaultBranch = repo.GetDefaultBranch()
	r.mu.Unlock()

	return &driven.RepoMetadata{
		Stars:         repo.GetStargazersCount(),
		Forks:         repo.GetForksCount(),
		OpenIssues:    repo.GetOpenIssuesCount(),
		CreatedAt:     repo.GetCreatedAt().Time,
		LastUpdatedAt: repo.GetPushedAt().Time,
		Description:   repo.GetDescription(),
		DefaultBranch: repo.GetDefaultBranch(),
	}, nil
}

// GetFile returns the content of path on the default branch.
func (r *Reader) GetFile(ctx context.Context, path string) (string, error) {
	if err := r.limiter.wait(ctx); err != nil {
		return "", err
	}
	file, _, resp, err := r.client.Repositories.GetContents(ctx, r.owner, r.name, path, nil)
	r.observe(resp)
	if err != nil {
		return "", classify(err)
	}
	if file == nil {
		return "", fmt.Errorf("github: %s is a directory", path)
	}
	if file.GetSize() > maxBlobSize {
		return "", fmt.Errorf("github: %s exceeds size limit (%d bytes)", path, file.GetSize())
	}
	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("github: decode %s: %w", path, err)
	}
	return content, nil
}

// ListFiles returns the repository tree paths on the default branch,
// shallowest first (the API returns the recursive tree in path order).
func (r *Reader) ListFiles(ctx context.Context) ([]string, error) {
	branch, err := r.branch(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.limiter.wait(ctx); err != nil {
		return nil, err
	}
	tree, resp, err := r.client.Git.GetTree(ctx, r.owner, r.name, branch, true)
	r.observe(resp)
	if err != nil {
		return nil, classify(err)
	}

	paths := make([]string, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		if entry.GetType() == "blob" {
			paths = append(paths, entry.GetPath())
		}
	}
	return paths, nil
}

// ListCommits returns commits in the range, newest first.
func (r *Reader) ListCommits(ctx context.Context, cr driven.CommitRange) ([]driven.Commit, error) {
	limit := cr.Limit
	if limit <= 0 {
		limit = defaultCommitLimit
	}

	opts := &gh.CommitsListOptions{
		ListOptions: gh.ListOptions{PerPage: commitsPerPage},
	}
	if !cr.Since.IsZero() {
		opts.Since = cr.Since
	}

	var commits []driven.Commit
	for {
		if err := r.limiter.wait(ctx); err != nil {
			return nil, err
		}
		page, resp, err := r.client.Repositories.ListCommits(ctx, r.owner, r.name, opts)
		r.observe(resp)
		if err != nil {
			return nil, classify(err)
		}

		for _, c := range page {
			author := c.GetAuthor().GetLogin()
			if author == "" {
				author = c.GetCommit().GetAuthor().GetName()
			}
			commits = append(commits, driven.Commit{
				Author:    author,
				Timestamp: c.GetCommit().GetAuthor().GetDate().Time,
				Message:   firstLine(c.GetCommit().GetMessage()),
			})
			if len(commits) >= limit {
				return commits, nil
			}
		}

		if resp == nil || resp.NextPage == 0 {
			return commits, nil
		}
		opts.Page = resp.NextPage
	}
}

// branch returns the cached default branch, fetching metadata on first use.
func (r *Reader) branch(ctx context.Context) (string, error) {
	r.mu.Lock()
	cached := r.defaultBranch
	r.mu.Unlock()
	if cached != "" {
		return cached, nil
	}
	md, err := r.GetMetadata(ctx)
	if err != nil {
		return "", err
	}
	return md.DefaultBranch, nil
}

func (r *Reader) observe(resp *gh.Response) {
	if resp != nil {
		r.limiter.observe(resp.Response)
	}
}

func firstLine(s string) string {
	for i := range s {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
