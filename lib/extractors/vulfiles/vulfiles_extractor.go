package vulfiles

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	enry "github.com/go-enry/go-enry/v2"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/hhatto/gocloc"
	"github.com/pkg/errors"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/samber/lo"

	"github.com/pescuma/vulndig/lib/consoles"
	"github.com/pescuma/vulndig/lib/filters"
	"github.com/pescuma/vulndig/lib/gitcmd"
	"github.com/pescuma/vulndig/lib/model"
	"github.com/pescuma/vulndig/lib/storages"
	"github.com/pescuma/vulndig/lib/utils"
)

type Extractor struct {
	console consoles.Console
	storage storages.Storage
	git     *gitcmd.Runner
}

type Options struct {
	// Output is the root of the snapshot tree:
	// <output>/<repo>/<short hash>/<name>_vul<ext>
	Output string

	// Includes are name globs for the files to keep. Empty means any
	// file that looks like source code.
	Includes []string

	// Excludes are path patterns (doublestar) to drop, test code by
	// default.
	Excludes []string

	// RespectGitignore drops files the repository's own .gitignore at
	// the parent commit would ignore.
	RespectGitignore bool
}

func NewExtractor(console consoles.Console, storage storages.Storage) *Extractor {
	return &Extractor{
		console: console,
		storage: storage,
		git:     gitcmd.NewRunner(),
	}
}

// Extract writes, for every analyzed fix, the pre-fix version of each
// changed source file. The pre-image comes straight from the parent
// commit's tree, so the work tree is never moved.
func (e *Extractor) Extract(opts *Options) error {
	fixesDB, err := e.storage.LoadFixes()
	if err != nil {
		return err
	}

	reposDB, err := e.storage.LoadRepositories()
	if err != nil {
		return err
	}

	output, err := utils.PathAbs(opts.Output)
	if err != nil {
		return err
	}

	if opts.Excludes == nil {
		opts.Excludes = []string{"**/test*/**", "**/*test*"}
	}

	filter, err := filters.NewFileFilter(opts.Includes, opts.Excludes)
	if err != nil {
		return err
	}

	toProcess := lo.Filter(fixesDB.List(), func(f *model.Fix, _ int) bool {
		if f.RepositoryID == nil {
			return false
		}
		repo := reposDB.GetByID(*f.RepositoryID)
		return repo != nil && repo.Cloned()
	})

	e.console.Printf("Extracting vulnerable files for %v fixes...\n", len(toProcess))

	extracted := 0
	bar := utils.NewProgressBar(len(toProcess))
	for _, fix := range toProcess {
		bar.Describe(fix.CVE)

		repo := reposDB.GetByID(*fix.RepositoryID)

		n, err := e.extractFix(fix, repo, filter, output, opts.RespectGitignore)
		if err != nil {
			_ = bar.Clear()
			e.console.Printf("%v %v: %v\n", fix.CVE, fix.ShortHash(), err)
		} else {
			extracted += n
		}

		_ = bar.Add(1)
	}

	e.console.Printf("Extracted %v vulnerable files\n", extracted)

	return nil
}

func (e *Extractor) extractFix(fix *model.Fix, repo *model.Repository,
	filter filters.FileFilter, output string, respectGitignore bool,
) (int, error) {
	gitRepo, err := git.PlainOpen(repo.RootDir)
	if err != nil {
		return 0, errors.Wrapf(err, "opening %v", repo.RootDir)
	}

	hash, err := gitRepo.ResolveRevision(plumbing.Revision(fix.CommitHash))
	if err != nil {
		return 0, errors.Wrapf(err, "resolving commit %v", fix.CommitHash)
	}

	commit, err := gitRepo.CommitObject(*hash)
	if err != nil {
		return 0, err
	}

	if commit.NumParents() == 0 {
		return 0, nil
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return 0, err
	}

	if respectGitignore {
		filter = filters.WithGitignore(filter, gitignoreAt(parent))
	}

	changed, err := e.git.ChangedFiles(repo.RootDir, commit.Hash.String())
	if err != nil {
		return 0, err
	}
	changed = lo.Filter(changed, func(f string, _ int) bool { return f != "" })

	dir := filepath.Join(output, repo.Name, fix.ShortHash())

	var written []string
	for _, path := range changed {
		if !filter(path) {
			continue
		}

		file, err := parent.File(path)
		if err == object.ErrFileNotFound {
			// Created by the fix commit, no vulnerable version exists
			continue
		}
		if err != nil {
			return 0, err
		}

		contents, err := file.Contents()
		if err != nil {
			return 0, err
		}

		if !isSourceCode(path, contents) {
			continue
		}

		err = os.MkdirAll(dir, 0o700)
		if err != nil {
			return 0, err
		}

		target := filepath.Join(dir, snapshotName(path))

		err = os.WriteFile(target, []byte(contents), 0o600)
		if err != nil {
			return 0, err
		}

		written = append(written, target)
	}

	if len(written) > 0 {
		err = e.writeLocIndex(dir, written)
		if err != nil {
			return 0, err
		}
	}

	return len(written), nil
}

func gitignoreAt(commit *object.Commit) *ignore.GitIgnore {
	file, err := commit.File(".gitignore")
	if err != nil {
		return nil
	}

	contents, err := file.Contents()
	if err != nil {
		return nil
	}

	return ignore.CompileIgnoreLines(strings.Split(contents, "\n")...)
}

func isSourceCode(path string, contents string) bool {
	language := enry.GetLanguage(filepath.Base(path), []byte(contents))
	if language == "" {
		return false
	}

	return enry.GetLanguageType(language) == enry.Programming
}

// snapshotName turns pkg/http/request.py into request_vul.py
func snapshotName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_vul" + ext
}

type locIndexEntry struct {
	Language string `json:"language"`
	Code     int32  `json:"code"`
	Comments int32  `json:"comments"`
	Blanks   int32  `json:"blanks"`
}

// writeLocIndex stores line counts of the extracted snapshots next to
// them, for dataset size reporting.
func (e *Extractor) writeLocIndex(dir string, files []string) error {
	languages := gocloc.NewDefinedLanguages()
	options := gocloc.NewClocOptions()

	processor := gocloc.NewProcessor(languages, options)
	result, err := processor.Analyze(files)
	if err != nil {
		return err
	}

	index := map[string]locIndexEntry{}
	for path, file := range result.Files {
		index[filepath.Base(path)] = locIndexEntry{
			Language: file.Lang,
			Code:     file.Code,
			Comments: file.Comments,
			Blanks:   file.Blanks,
		}
	}

	contents, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "loc_index.json"), contents, 0o600)
}
