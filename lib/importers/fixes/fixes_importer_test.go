package fixes_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pescuma/vulndig/lib/consoles"
	"github.com/pescuma/vulndig/lib/importers/fixes"
	"github.com/pescuma/vulndig/lib/storages"
	"github.com/pescuma/vulndig/lib/storages/orm"
)

func TestImportList(t *testing.T) {
	t.Parallel()

	storage := createStorage(t)
	importer := fixes.NewImporter(consoles.NewStdOutConsole(), storage)

	file := writeFile(t, "fixes.json", `[
		["CVE-2020-1", "aaa111", "https://github.com/psf/requests"],
		["CVE-2020-2", "bbb222", "https://github.com/psf/requests"],
		["CVE-2020-3", "ccc333", "https://github.com/pallets/flask"]
	]`)

	err := importer.ImportList(file)
	require.NoError(t, err)

	fixesDB, err := storage.LoadFixes()
	require.NoError(t, err)

	reposDB, err := storage.LoadRepositories()
	require.NoError(t, err)

	assert.Equal(t, 3, fixesDB.Count())
	assert.Equal(t, 2, reposDB.Count())

	fix := fixesDB.Get("CVE-2020-1", "aaa111")
	require.NotNil(t, fix)
	require.NotNil(t, fix.RepositoryID)

	repo := reposDB.GetByID(*fix.RepositoryID)
	require.NotNil(t, repo)
	assert.Equal(t, "requests", repo.Name)
	assert.Equal(t, "psf", repo.Owner)
	assert.Equal(t, "git", repo.VCS)
}

func TestImportListIsIdempotent(t *testing.T) {
	t.Parallel()

	storage := createStorage(t)
	importer := fixes.NewImporter(consoles.NewStdOutConsole(), storage)

	file := writeFile(t, "fixes.json", `[["CVE-2020-1", "aaa111", "https://github.com/psf/requests"]]`)

	require.NoError(t, importer.ImportList(file))
	require.NoError(t, importer.ImportList(file))

	fixesDB, err := storage.LoadFixes()
	require.NoError(t, err)

	assert.Equal(t, 1, fixesDB.Count())
}

func TestImportListShortEntry(t *testing.T) {
	t.Parallel()

	storage := createStorage(t)
	importer := fixes.NewImporter(consoles.NewStdOutConsole(), storage)

	file := writeFile(t, "fixes.json", `[["CVE-2020-1", "aaa111"]]`)

	err := importer.ImportList(file)
	assert.Error(t, err)
}

func TestImportCwes(t *testing.T) {
	t.Parallel()

	storage := createStorage(t)
	importer := fixes.NewImporter(consoles.NewStdOutConsole(), storage)

	list := writeFile(t, "fixes.json", `[
		["CVE-2020-1", "aaa111", "https://github.com/psf/requests"],
		["CVE-2020-1", "bbb222", "https://github.com/psf/requests"],
		["CVE-2020-2", "ccc333", "https://github.com/pallets/flask"]
	]`)
	require.NoError(t, importer.ImportList(list))

	cwes := writeFile(t, "cwes.json", `{"CVE-2020-1": "CWE-79", "CVE-2099-9": "CWE-89"}`)
	require.NoError(t, importer.ImportCwes(cwes))

	fixesDB, err := storage.LoadFixes()
	require.NoError(t, err)

	for _, fix := range fixesDB.ListByCVE("CVE-2020-1") {
		assert.Equal(t, "CWE-79", fix.CWE)
	}

	fix := fixesDB.Get("CVE-2020-2", "ccc333")
	require.NotNil(t, fix)
	assert.Equal(t, "", fix.CWE)
}

func createStorage(t *testing.T) storages.Storage {
	storage, err := orm.NewGormStorage(orm.WithSqliteInMemory(), consoles.NewStdOutConsole())
	require.NoError(t, err)

	t.Cleanup(func() { _ = storage.Close() })

	return storage
}

func writeFile(t *testing.T, name string, contents string) string {
	file := filepath.Join(t.TempDir(), name)

	err := os.WriteFile(file, []byte(contents), 0o600)
	require.NoError(t, err)

	return file
}
