package git

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/hashicorp/go-set/v2"
	"github.com/pkg/errors"

	"github.com/pescuma/vulndig/lib/consoles"
	"github.com/pescuma/vulndig/lib/model"
	"github.com/pescuma/vulndig/lib/storages"
	"github.com/pescuma/vulndig/lib/utils"
)

type ReposImporter struct {
	console consoles.Console
	storage storages.Storage
}

type ReposOptions struct {
	// Playground is the directory the repositories are cloned into.
	Playground string

	// Update re-clones repositories that are already there.
	Update bool
}

func NewReposImporter(console consoles.Console, storage storages.Storage) *ReposImporter {
	return &ReposImporter{
		console: console,
		storage: storage,
	}
}

// Import clones every repository referenced by the imported fixes into
// the playground, skipping the ones already cloned.
func (i *ReposImporter) Import(opts *ReposOptions) error {
	reposDB, err := i.storage.LoadRepositories()
	if err != nil {
		return err
	}

	playground, err := utils.PathAbs(opts.Playground)
	if err != nil {
		return err
	}

	err = os.MkdirAll(playground, 0o700)
	if err != nil {
		return err
	}

	repos := reposDB.List()

	i.console.Printf("Cloning %v repositories into %v...\n", len(repos), playground)

	// Different owners can have repositories with the same name, so
	// directory names get the owner prefix on collision
	taken := set.New[string](len(repos))

	for _, repo := range repos {
		dir := repo.Name
		if taken.Contains(dir) {
			dir = repo.Owner + "_" + repo.Name
		}
		taken.Insert(dir)

		target := filepath.Join(playground, dir)

		err = i.cloneRepo(repo, target, opts.Update)
		if err != nil {
			i.console.Printf("Skipping %v: %v\n", repo.URL, err)
			continue
		}

		err = i.storage.WriteRepository(repo)
		if err != nil {
			return err
		}
	}

	return nil
}

func (i *ReposImporter) cloneRepo(repo *model.Repository, target string, update bool) error {
	if repo.Cloned() && !update {
		if exists, err := utils.FileExists(repo.RootDir); err == nil && exists {
			return nil
		}
	}

	if update {
		err := os.RemoveAll(target)
		if err != nil {
			return err
		}
	}

	i.console.Printf("Cloning %v to %v...\n", repo.URL, target)

	gitRepo, err := git.PlainClone(target, false, &git.CloneOptions{
		URL:      repo.URL,
		Progress: os.Stdout,
	})
	if err == git.ErrRepositoryAlreadyExists {
		gitRepo, err = git.PlainOpen(target)
	}
	if err != nil {
		return err
	}

	repo.RootDir = target
	repo.VCS = "git"
	repo.Branch = headBranch(gitRepo)
	repo.MarkCloned(time.Now())

	return nil
}

// Checkout moves the work tree of a cloned repository to a commit, or to
// the commit's first parent.
func (i *ReposImporter) Checkout(repoName string, revision string, parent bool) error {
	reposDB, err := i.storage.LoadRepositories()
	if err != nil {
		return err
	}

	repo := reposDB.GetByName(repoName)
	if repo == nil || !repo.Cloned() {
		return errors.Errorf("repository %v is not cloned", repoName)
	}

	gitRepo, err := openRepo(repo.RootDir)
	if err != nil {
		return err
	}

	commit, err := resolveCommit(gitRepo, revision)
	if err != nil {
		return err
	}

	if parent {
		parentCommit, err := firstParent(commit)
		if err != nil {
			return err
		}
		if parentCommit == nil {
			return errors.Errorf("commit %v has no parent", revision)
		}

		commit = parentCommit
		i.console.Printf("Found parent commit: %v\n", commit.Hash)
	}

	worktree, err := gitRepo.Worktree()
	if err != nil {
		return err
	}

	i.console.Printf("%v: Checking out %v...\n", repo.Name, commit.Hash)

	return worktree.Checkout(&git.CheckoutOptions{
		Hash:  commit.Hash,
		Force: true,
	})
}
