package workspace

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/abiosoft/lineprefix"

	"github.com/pescuma/vulndig/lib/consoles"
	"github.com/pescuma/vulndig/lib/extractors/truth"
	"github.com/pescuma/vulndig/lib/extractors/vulfiles"
	"github.com/pescuma/vulndig/lib/importers/analyze"
	"github.com/pescuma/vulndig/lib/importers/fixes"
	"github.com/pescuma/vulndig/lib/importers/git"
	"github.com/pescuma/vulndig/lib/model"
	"github.com/pescuma/vulndig/lib/storages"
	"github.com/pescuma/vulndig/lib/storages/orm"
	"github.com/pescuma/vulndig/lib/utils"
)

type Workspace struct {
	console consoles.Console
	storage storages.Storage
}

func NewWorkspace(file string) (*Workspace, error) {
	if file == "" {
		if _, err := os.Stat("./.vulndig"); err == nil {
			file = "./.vulndig/vulndig.sqlite"
		} else {
			file = "~/.vulndig/vulndig.sqlite"
		}
	}

	console := consoles.NewStdOutConsole()

	var storage storages.Storage
	var err error
	switch {
	case file == ":memory:":
		storage, err = orm.NewGormStorage(orm.WithSqliteInMemory(), console)

	case strings.HasSuffix(file, ".sqlite"):
		file, err = utils.PathAbs(file)
		if err != nil {
			return nil, err
		}

		err = createWorkspaceDir(file)
		if err != nil {
			return nil, err
		}

		storage, err = orm.NewGormStorage(orm.WithSqlite(file), console)

	default:
		return nil, fmt.Errorf("unknown storage type for file %v", file)
	}
	if err != nil {
		return nil, err
	}

	return &Workspace{
		console: console,
		storage: storage,
	}, nil
}

func createWorkspaceDir(file string) error {
	path := filepath.Dir(file)

	if _, err := os.Stat(path); err != nil {
		fmt.Printf("Creating workspace at %v\n", path)
		err = os.MkdirAll(path, 0o700)
		if err != nil {
			return err
		}
	}

	return nil
}

func (w *Workspace) Close() error {
	return w.storage.Close()
}

func (w *Workspace) Console() consoles.Console {
	return w.console
}

func (w *Workspace) LoadFixes() (*model.Fixes, error) {
	return w.storage.LoadFixes()
}

func (w *Workspace) LoadRepositories() (*model.Repositories, error) {
	return w.storage.LoadRepositories()
}

func (w *Workspace) Execute(f func(consoles.Console, storages.Storage) error) error {
	return f(w.console, w.storage)
}

func (w *Workspace) SetGlobalConfig(config string, value string) (bool, error) {
	cfg, err := w.storage.LoadConfig()
	if err != nil {
		return false, err
	}

	v, ok := (*cfg)[config]
	if ok && v == value {
		return false, nil
	}

	(*cfg)[config] = value

	return true, w.storage.WriteConfig()
}

func (w *Workspace) ImportFixesList(file string) error {
	importer := fixes.NewImporter(w.console, w.storage)
	return importer.ImportList(file)
}

func (w *Workspace) ImportCwes(file string) error {
	importer := fixes.NewImporter(w.console, w.storage)
	return importer.ImportCwes(file)
}

func (w *Workspace) ImportRepos(opts *git.ReposOptions) error {
	importer := git.NewReposImporter(w.console, w.storage)
	return importer.Import(opts)
}

func (w *Workspace) Checkout(repoName string, revision string, parent bool) error {
	importer := git.NewReposImporter(w.console, w.storage)
	return importer.Checkout(repoName, revision, parent)
}

func (w *Workspace) Analyze(opts *analyze.Options) error {
	importer := analyze.NewImporter(w.console, w.storage)
	return importer.Import(opts)
}

func (w *Workspace) ExtractTruth(opts *truth.Options) error {
	extractor := truth.NewExtractor(w.console, w.storage)
	return extractor.Extract(opts)
}

func (w *Workspace) ExtractVulFiles(opts *vulfiles.Options) error {
	extractor := vulfiles.NewExtractor(w.console, w.storage)
	return extractor.Extract(opts)
}

func (w *Workspace) RunGit(args ...string) error {
	repos, err := w.storage.LoadRepositories()
	if err != nil {
		return err
	}

	for _, repo := range repos.List() {
		if !repo.Cloned() {
			continue
		}

		cmd := exec.Command("git", args...)
		cmd.Dir = repo.RootDir

		w.console.Printf("%v: Executing '%v'\n", repo.Name, strings.Join(cmd.Args, "' '"))
		w.console.PushPrefix("%v: ", repo.Name)

		prefix := lineprefix.PrefixFunc(func() string {
			return w.console.Prepare("")
		})

		cmd.Stdin = os.Stdin
		cmd.Stdout = lineprefix.New(lineprefix.Writer(os.Stdout), prefix)
		cmd.Stderr = lineprefix.New(lineprefix.Writer(os.Stderr), prefix)

		_ = cmd.Run()

		w.console.PopPrefix()
	}

	return nil
}
