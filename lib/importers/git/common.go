package git

import (
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pkg/errors"
)

func openRepo(rootDir string) (*git.Repository, error) {
	result, err := git.PlainOpen(rootDir)
	if err != nil {
		return nil, errors.Wrapf(err, "opening git repository at %v", rootDir)
	}

	return result, nil
}

func resolveCommit(gitRepo *git.Repository, revision string) (*object.Commit, error) {
	hash, err := gitRepo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return nil, errors.Wrapf(err, "resolving revision %v", revision)
	}

	result, err := gitRepo.CommitObject(*hash)
	if err != nil {
		return nil, errors.Wrapf(err, "loading commit %v", hash)
	}

	return result, nil
}

// firstParent returns nil for root commits.
func firstParent(commit *object.Commit) (*object.Commit, error) {
	if commit.NumParents() == 0 {
		return nil, nil
	}

	return commit.Parent(0)
}

func headBranch(gitRepo *git.Repository) string {
	head, err := gitRepo.Head()
	if err != nil {
		return ""
	}

	if head.Name().IsBranch() {
		return head.Name().Short()
	}

	return "HEAD"
}
