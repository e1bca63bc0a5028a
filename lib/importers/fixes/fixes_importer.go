package fixes

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/pescuma/vulndig/lib/consoles"
	"github.com/pescuma/vulndig/lib/storages"
)

// Positions inside each entry of the fixes list, as produced by the CVE
// collection step.
const (
	cveIDIndex    = 0
	commitIDIndex = 1
	repoURLIndex  = 2
)

type Importer struct {
	console consoles.Console
	storage storages.Storage
}

func NewImporter(console consoles.Console, storage storages.Storage) *Importer {
	return &Importer{
		console: console,
		storage: storage,
	}
}

// ImportList imports a fixes list file: a JSON array of
// [cveID, commitHash, repositoryURL] entries.
func (i *Importer) ImportList(file string) error {
	fixesDB, err := i.storage.LoadFixes()
	if err != nil {
		return err
	}

	reposDB, err := i.storage.LoadRepositories()
	if err != nil {
		return err
	}

	contents, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	var entries [][]string
	err = json.Unmarshal(contents, &entries)
	if err != nil {
		return errors.Wrapf(err, "parsing fixes list %v", file)
	}

	i.console.Printf("Importing %v fixes...\n", len(entries))

	imported := 0
	for pos, entry := range entries {
		if len(entry) <= repoURLIndex {
			return errors.Errorf("fixes list %v: entry %v has %v fields, expected at least %v",
				file, pos, len(entry), repoURLIndex+1)
		}

		fix := fixesDB.GetOrCreate(entry[cveIDIndex], entry[commitIDIndex], entry[repoURLIndex])

		repo := reposDB.GetOrCreate(fix.RepoURL)
		repo.Owner = fix.RepoOwner()
		repo.Name = fix.RepoName()
		repo.VCS = "git"

		fix.RepositoryID = &repo.ID

		imported++
	}

	i.console.Printf("Writing results...\n")

	err = i.storage.WriteFixes()
	if err != nil {
		return err
	}

	err = i.storage.WriteRepositories()
	if err != nil {
		return err
	}

	i.console.Printf("Imported %v fixes into %v repositories\n", imported, reposDB.Count())

	return nil
}

// ImportCwes imports a JSON object mapping CVE ids to CWE ids and
// attaches the CWE to every fix of each CVE.
func (i *Importer) ImportCwes(file string) error {
	fixesDB, err := i.storage.LoadFixes()
	if err != nil {
		return err
	}

	contents, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	var mapping map[string]string
	err = json.Unmarshal(contents, &mapping)
	if err != nil {
		return errors.Wrapf(err, "parsing CVE to CWE mapping %v", file)
	}

	i.console.Printf("Importing %v CVE to CWE mappings...\n", len(mapping))

	updated := 0
	for _, fix := range fixesDB.List() {
		cwe, ok := mapping[fix.CVE]
		if !ok {
			continue
		}

		if fix.CWE != cwe {
			fix.CWE = cwe
			updated++
		}
	}

	i.console.Printf("Writing results...\n")

	err = i.storage.WriteFixes()
	if err != nil {
		return err
	}

	i.console.Printf("Updated %v fixes\n", updated)

	return nil
}
