package analyze

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/pescuma/vulndig/lib/consoles"
	"github.com/pescuma/vulndig/lib/diffscan"
	"github.com/pescuma/vulndig/lib/gitcmd"
	"github.com/pescuma/vulndig/lib/linediff"
	"github.com/pescuma/vulndig/lib/model"
	"github.com/pescuma/vulndig/lib/storages"
	"github.com/pescuma/vulndig/lib/utils"
)

type Importer struct {
	console consoles.Console
	storage storages.Storage
	git     *gitcmd.Runner
}

type Options struct {
	// Output is the directory the per-fix analysis JSON files go to.
	Output string

	// Incremental skips fixes that already have an analysis.
	Incremental bool

	MaxFixes *int
}

func NewImporter(console consoles.Console, storage storages.Storage) *Importer {
	return &Importer{
		console: console,
		storage: storage,
		git:     gitcmd.NewRunner(),
	}
}

// Import analyzes the fix commit of every imported fix against its
// parent. A fix that fails is reported and skipped, it does not abort
// the batch.
func (i *Importer) Import(opts *Options) error {
	fixesDB, err := i.storage.LoadFixes()
	if err != nil {
		return err
	}

	reposDB, err := i.storage.LoadRepositories()
	if err != nil {
		return err
	}

	output, err := utils.PathAbs(opts.Output)
	if err != nil {
		return err
	}

	err = os.MkdirAll(output, 0o700)
	if err != nil {
		return err
	}

	toProcess := lo.Filter(fixesDB.List(), func(f *model.Fix, _ int) bool {
		if opts.Incremental && f.AnalyzedAt != nil {
			return false
		}

		repo := i.repoOf(reposDB, f)
		return repo != nil && repo.Cloned()
	})

	if opts.MaxFixes != nil && len(toProcess) > *opts.MaxFixes {
		toProcess = toProcess[:*opts.MaxFixes]
	}

	if len(toProcess) == 0 {
		i.console.Printf("Nothing to analyze\n")
		return nil
	}

	i.console.Printf("Analyzing %v fixes...\n", len(toProcess))

	analyzed := 0
	bar := utils.NewProgressBar(len(toProcess))
	for _, fix := range toProcess {
		bar.Describe(fix.CVE)

		err = i.analyzeFix(fix, i.repoOf(reposDB, fix), output)
		if err != nil {
			_ = bar.Clear()
			i.console.Printf("%v %v: %v\n", fix.CVE, fix.ShortHash(), err)
		} else {
			analyzed++
		}

		_ = bar.Add(1)
	}

	i.console.Printf("Writing results...\n")

	err = i.storage.WriteFixes()
	if err != nil {
		return err
	}

	i.console.Printf("Analyzed %v fixes\n", analyzed)

	return nil
}

func (i *Importer) repoOf(reposDB *model.Repositories, fix *model.Fix) *model.Repository {
	if fix.RepositoryID == nil {
		return nil
	}
	return reposDB.GetByID(*fix.RepositoryID)
}

func (i *Importer) analyzeFix(fix *model.Fix, repo *model.Repository, output string) error {
	gitRepo, err := git.PlainOpen(repo.RootDir)
	if err != nil {
		return errors.Wrapf(err, "opening %v", repo.RootDir)
	}

	hash, err := gitRepo.ResolveRevision(plumbing.Revision(fix.CommitHash))
	if err != nil {
		return errors.Wrapf(err, "resolving commit %v", fix.CommitHash)
	}

	commit, err := gitRepo.CommitObject(*hash)
	if err != nil {
		return errors.Wrapf(err, "loading commit %v", fix.CommitHash)
	}

	var parent *object.Commit
	if commit.NumParents() > 0 {
		parent, err = commit.Parent(0)
		if err != nil {
			return err
		}
	}

	changes, err := i.computeChanges(repo, fix, parent)
	if err != nil {
		return err
	}

	stats, err := i.computeLineStats(commit, parent)
	if err != nil {
		return err
	}

	fix.FilesChanged = len(lo.Filter(changes.FilesList, func(f string, _ int) bool { return f != "" }))
	fix.LinesAdded = stats.Added
	fix.LinesDeleted = stats.Deleted
	fix.LinesModified = stats.Modified
	fix.AnalyzedAt = lo.ToPtr(time.Now().UTC().Round(time.Second))

	err = i.saveAnalysis(changes, fix, repo, output)
	if err != nil {
		return err
	}

	return i.storage.WriteFix(fix)
}

func (i *Importer) computeChanges(repo *model.Repository, fix *model.Fix, parent *object.Commit) (*diffscan.Changes, error) {
	// Root commits have no parent to diff against, which is the same as
	// an empty diff
	if parent == nil {
		return diffscan.Scan("")
	}

	diff, err := i.git.Diff(repo.RootDir, parent.Hash.String(), fix.CommitHash)
	if err != nil {
		return nil, err
	}

	changes, err := diffscan.Scan(diff)
	if err != nil {
		return nil, err
	}

	changes.StatSummary, err = i.git.DiffStat(repo.RootDir, parent.Hash.String(), fix.CommitHash)
	if err != nil {
		return nil, err
	}

	changes.FilesList, err = i.git.ChangedFiles(repo.RootDir, fix.CommitHash)
	if err != nil {
		return nil, err
	}

	return changes, nil
}

// computeLineStats diffs the contents of each changed file to count
// added, deleted and modified lines. Modified is what the unified diff
// shows as paired delete/add runs.
func (i *Importer) computeLineStats(commit *object.Commit, parent *object.Commit) (linediff.Stats, error) {
	result := linediff.Stats{}

	if parent == nil {
		return result, nil
	}

	commitTree, err := commit.Tree()
	if err != nil {
		return result, err
	}

	parentTree, err := parent.Tree()
	if err != nil {
		return result, err
	}

	treeChanges, err := parentTree.Diff(commitTree)
	if err != nil {
		return result, err
	}

	for _, change := range treeChanges {
		parentFile, commitFile, err := change.Files()
		if err != nil {
			return result, err
		}

		parentContent, parentIsBinary, err := fileContent(parentFile)
		if err != nil {
			return result, err
		}

		commitContent, commitIsBinary, err := fileContent(commitFile)
		if err != nil {
			return result, err
		}

		if parentIsBinary || commitIsBinary {
			continue
		}

		stats := linediff.ComputeStats(linediff.Do(parentContent, commitContent))

		result.Added += stats.Added
		result.Deleted += stats.Deleted
		result.Modified += stats.Modified
	}

	return result, nil
}

func fileContent(f *object.File) (string, bool, error) {
	if f == nil {
		return "", false, nil
	}

	isBinary, err := f.IsBinary()
	if err != nil {
		return "", false, err
	}

	if isBinary {
		return "", true, nil
	}

	content, err := f.Contents()
	if err != nil {
		return "", false, err
	}

	return content, false, nil
}

func (i *Importer) saveAnalysis(changes *diffscan.Changes, fix *model.Fix, repo *model.Repository, output string) error {
	contents, err := json.MarshalIndent(changes, "", "  ")
	if err != nil {
		return err
	}

	file := filepath.Join(output, fmt.Sprintf("%v_%v_analysis.json", repo.Name, fix.ShortHash()))

	return os.WriteFile(file, contents, 0o600)
}
