package truth

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pescuma/vulndig/lib/consoles"
	"github.com/pescuma/vulndig/lib/storages"
	"github.com/pescuma/vulndig/lib/utils"
)

type Extractor struct {
	console consoles.Console
	storage storages.Storage
}

type Options struct {
	// Output is the root of the golden truth tree:
	// <output>/<repo>/<short hash>/golden_truth
	Output string
}

type goldenTruth struct {
	CveID string `json:"cve_id"`
	CweID string `json:"cwe_id"`
}

func NewExtractor(console consoles.Console, storage storages.Storage) *Extractor {
	return &Extractor{
		console: console,
		storage: storage,
	}
}

// Extract writes one golden truth label file per fix that has a CWE.
func (e *Extractor) Extract(opts *Options) error {
	fixesDB, err := e.storage.LoadFixes()
	if err != nil {
		return err
	}

	output, err := utils.PathAbs(opts.Output)
	if err != nil {
		return err
	}

	fixes := fixesDB.List()

	e.console.Printf("Extracting golden truth for %v fixes...\n", len(fixes))

	written := 0
	skipped := 0
	for _, fix := range fixes {
		if fix.CWE == "" {
			skipped++
			continue
		}

		dir := filepath.Join(output, fix.RepoName(), fix.ShortHash())

		err = os.MkdirAll(dir, 0o700)
		if err != nil {
			return err
		}

		contents, err := json.MarshalIndent(goldenTruth{CveID: fix.CVE, CweID: fix.CWE}, "", "    ")
		if err != nil {
			return err
		}

		err = os.WriteFile(filepath.Join(dir, "golden_truth"), contents, 0o600)
		if err != nil {
			return err
		}

		written++
	}

	e.console.Printf("Wrote %v golden truth files (%v fixes without CWE)\n", written, skipped)

	return nil
}
