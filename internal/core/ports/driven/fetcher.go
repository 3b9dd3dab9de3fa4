package driven

import (
	"context"
	"time"
)

// RemoteFile describes a file discovered in a remote repository tree.
type RemoteFile struct {
	// Path is the repository-relative file path.
	Path string

	// SHA is the blob identifier for the file content.
	SHA string

	// Size is the content length in bytes.
	Size int
}

// DocFetcher retrieves documentation files from a remote repository.
//
// Implementations are expected to honour upstream rate limits by
// waiting cooperatively rather than failing when the remaining quota
// runs low. A hard rate-limit rejection surfaces as a
// *RateLimitError from the connector package.
type DocFetcher interface {
	// ListFiles enumerates ingestible files under folderPath (the whole
	// repository when folderPath is empty). Only supported file types
	// are returned.
	ListFiles(ctx context.Context, repoURL, folderPath string) ([]RemoteFile, error)

	// DownloadFile fetches the decoded content of one file.
	DownloadFile(ctx context.Context, repoURL, path string) (string, error)

	// LastCommitDate returns the most recent commit timestamp for the
	// repository (scoped to folderPath when non-empty).
	LastCommitDate(ctx context.Context, repoURL, folderPath string) (time.Time, error)
}
