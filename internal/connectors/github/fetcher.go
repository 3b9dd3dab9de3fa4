package github

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/docfoundry/docfoundry/internal/chunking"
	"github.com/docfoundry/docfoundry/internal/core/ports/driven"
)

// MaxFileSize is the largest file the fetcher will ingest (1MB).
const MaxFileSize = 1024 * 1024

// Fetcher retrieves documentation files from GitHub repositories.
// It implements the DocFetcher port.
type Fetcher struct {
	client *Client
}

var _ driven.DocFetcher = (*Fetcher)(nil)

// NewFetcher creates a fetcher on top of an API client.
func NewFetcher(client *Client) *Fetcher {
	return &Fetcher{client: client}
}

// ParseRepoURL extracts owner and repository name from a GitHub URL.
// Accepts https URLs (with optional .git suffix), ssh URLs, and the
// bare "owner/repo" shorthand.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	s := strings.TrimSpace(repoURL)
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, ".git")

	switch {
	case strings.HasPrefix(s, "git@"):
		// git@github.com:owner/repo
		_, after, found := strings.Cut(s, ":")
		if !found {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidRepoURL, repoURL)
		}
		s = after
	case strings.Contains(s, "://"):
		// https://github.com/owner/repo
		_, after, _ := strings.Cut(s, "://")
		parts := strings.SplitN(after, "/", 2)
		if len(parts) != 2 {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidRepoURL, repoURL)
		}
		s = parts[1]
	}

	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepoURL, repoURL)
	}
	return parts[0], parts[1], nil
}

// ListFiles enumerates ingestible files in the repository tree,
// restricted to folderPath when non-empty. Directories, oversized
// files, and unsupported file types are filtered out.
func (f *Fetcher) ListFiles(ctx context.Context, repoURL, folderPath string) ([]driven.RemoteFile, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	repository, err := f.client.GetRepository(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	branch := repository.GetDefaultBranch()

	tree, err := f.client.GetTree(ctx, owner, repo, branch)
	if err != nil {
		return nil, err
	}

	prefix := normalizeFolder(folderPath)

	files := make([]driven.RemoteFile, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}

		path := entry.GetPath()
		if prefix != "" && !strings.HasPrefix(path, prefix) {
			continue
		}
		if entry.GetSize() > MaxFileSize {
			continue
		}
		if !chunking.IsSupportedType(strings.TrimPrefix(filepath.Ext(path), ".")) {
			continue
		}

		files = append(files, driven.RemoteFile{
			Path: path,
			SHA:  entry.GetSHA(),
			Size: entry.GetSize(),
		})
	}

	return files, nil
}

// DownloadFile fetches the decoded content of one file from the
// repository's default branch.
func (f *Fetcher) DownloadFile(ctx context.Context, repoURL, path string) (string, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return "", err
	}
	return f.client.GetFileContent(ctx, owner, repo, path, "")
}

// LastCommitDate returns the most recent commit timestamp, scoped to
// folderPath when non-empty.
func (f *Fetcher) LastCommitDate(ctx context.Context, repoURL, folderPath string) (time.Time, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return time.Time{}, err
	}

	commit, err := f.client.LastCommit(ctx, owner, repo, strings.TrimSuffix(normalizeFolder(folderPath), "/"))
	if err != nil {
		return time.Time{}, err
	}

	return commit.GetCommit().GetCommitter().GetDate().Time, nil
}

// normalizeFolder turns a folder path into a tree prefix ("docs" ->
// "docs/"). Empty means the whole repository.
func normalizeFolder(folderPath string) string {
	p := strings.Trim(strings.TrimSpace(folderPath), "/")
	if p == "" {
		return ""
	}
	return p + "/"
}
