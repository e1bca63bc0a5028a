package model

import (
	"strings"
	"time"
)

// Fix is one (CVE, fix commit, repository) tuple from the input dataset,
// plus whatever the pipeline already computed for it.
type Fix struct {
	ID         ID
	CVE        string
	CommitHash string
	RepoURL    string

	CWE string

	RepositoryID *UUID

	FilesChanged  int
	LinesAdded    int
	LinesDeleted  int
	LinesModified int

	AnalyzedAt *time.Time

	Data map[string]string
}

func NewFix(id ID, cve string, commitHash string, repoURL string) *Fix {
	return &Fix{
		ID:            id,
		CVE:           cve,
		CommitHash:    commitHash,
		RepoURL:       repoURL,
		FilesChanged:  -1,
		LinesAdded:    -1,
		LinesDeleted:  -1,
		LinesModified: -1,
		Data:          map[string]string{},
	}
}

// RepoOwner and RepoName come from the last two path segments of the
// repository URL, the way the fixes lists store them.
func (f *Fix) RepoOwner() string {
	owner, _ := splitRepoURL(f.RepoURL)
	return owner
}

func (f *Fix) RepoName() string {
	_, name := splitRepoURL(f.RepoURL)
	return name
}

func (f *Fix) ShortHash() string {
	if len(f.CommitHash) < 7 {
		return f.CommitHash
	}
	return f.CommitHash[:7]
}

func splitRepoURL(url string) (string, string) {
	url = strings.TrimSuffix(url, "/")
	url = strings.TrimSuffix(url, ".git")

	parts := strings.Split(url, "/")
	if len(parts) < 2 {
		return "", url
	}

	return parts[len(parts)-2], parts[len(parts)-1]
}
