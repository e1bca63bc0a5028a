package orm

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pescuma/vulndig/lib/consoles"
)

func TestFixesRoundtrip(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "test.sqlite")
	console := consoles.NewStdOutConsole()

	storage, err := NewGormStorage(WithSqlite(file), console)
	require.NoError(t, err)

	fixes, err := storage.LoadFixes()
	require.NoError(t, err)
	assert.Equal(t, 0, fixes.Count())

	fix := fixes.GetOrCreate("CVE-2012-4520", "9305c0e", "https://github.com/django/django")
	fix.CWE = "CWE-20"
	fix.FilesChanged = 3
	fix.LinesAdded = 10
	fix.LinesDeleted = 2

	require.NoError(t, storage.WriteFixes())
	require.NoError(t, storage.Close())

	storage, err = NewGormStorage(WithSqlite(file), console)
	require.NoError(t, err)
	defer storage.Close()

	fixes, err = storage.LoadFixes()
	require.NoError(t, err)

	loaded := fixes.Get("CVE-2012-4520", "9305c0e")
	require.NotNil(t, loaded)
	assert.Equal(t, fix.ID, loaded.ID)
	assert.Equal(t, "CWE-20", loaded.CWE)
	assert.Equal(t, 3, loaded.FilesChanged)
	assert.Equal(t, 10, loaded.LinesAdded)
	assert.Equal(t, 2, loaded.LinesDeleted)
	assert.Equal(t, -1, loaded.LinesModified)
	assert.Nil(t, loaded.AnalyzedAt)
}

func TestRepositoriesRoundtrip(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "test.sqlite")
	console := consoles.NewStdOutConsole()

	storage, err := NewGormStorage(WithSqlite(file), console)
	require.NoError(t, err)

	repos, err := storage.LoadRepositories()
	require.NoError(t, err)

	repo := repos.GetOrCreate("https://github.com/django/django")
	repo.Name = "django"
	repo.Owner = "django"
	repo.VCS = "git"
	repo.MarkCloned(time.Now())

	require.NoError(t, storage.WriteRepositories())
	require.NoError(t, storage.Close())

	storage, err = NewGormStorage(WithSqlite(file), console)
	require.NoError(t, err)
	defer storage.Close()

	repos, err = storage.LoadRepositories()
	require.NoError(t, err)

	loaded := repos.Get("https://github.com/django/django")
	require.NotNil(t, loaded)
	assert.Equal(t, repo.ID, loaded.ID)
	assert.Equal(t, "django", loaded.Name)
	assert.True(t, loaded.Cloned())
}
