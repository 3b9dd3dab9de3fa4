package domain

import "time"

// DocCollection represents a documentation source within a project:
// a repository (optionally narrowed to a folder) whose files are
// ingested into retrievable knowledge.
type DocCollection struct {
	// ID is the unique identifier for the collection.
	ID string

	// ProjectID links the collection to its owning project. Retrieval
	// queries are always scoped to a project.
	ProjectID string

	// Name is the human-readable label.
	Name string

	// RepoURL is the source repository URL (e.g. https://github.com/owner/repo).
	RepoURL string

	// FolderPath optionally restricts ingestion to a subfolder. Empty
	// means the whole repository.
	FolderPath string

	// LastSyncedAt is when the collection last completed an ingestion run.
	LastSyncedAt *time.Time

	// LastCommitDate is the most recent remote commit date observed
	// during the last sync.
	LastCommitDate *time.Time

	// CreatedAt is when the collection was registered.
	CreatedAt time.Time

	// UpdatedAt is when the collection was last modified.
	UpdatedAt time.Time
}
