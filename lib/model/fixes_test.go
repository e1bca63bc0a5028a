package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pescuma/vulndig/lib/model"
)

func TestFixesGetOrCreateReturnsSameFix(t *testing.T) {
	t.Parallel()

	fixes := model.NewFixes()

	a := fixes.GetOrCreate("CVE-2020-1234", "abc123", "https://github.com/o/r")
	b := fixes.GetOrCreate("CVE-2020-1234", "abc123", "https://github.com/o/r")

	assert.Same(t, a, b)
	assert.Equal(t, 1, fixes.Count())
}

func TestFixesSameCVEDifferentCommits(t *testing.T) {
	t.Parallel()

	fixes := model.NewFixes()

	a := fixes.GetOrCreate("CVE-2020-1234", "abc123", "https://github.com/o/r")
	b := fixes.GetOrCreate("CVE-2020-1234", "def456", "https://github.com/o/r")

	assert.NotSame(t, a, b)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, fixes.ListByCVE("CVE-2020-1234"), 2)
}

func TestFixesListIsSorted(t *testing.T) {
	t.Parallel()

	fixes := model.NewFixes()

	fixes.GetOrCreate("CVE-2021-2", "bbb", "u")
	fixes.GetOrCreate("CVE-2021-1", "ccc", "u")
	fixes.GetOrCreate("CVE-2021-2", "aaa", "u")

	list := fixes.List()

	assert.Equal(t, "CVE-2021-1", list[0].CVE)
	assert.Equal(t, "aaa", list[1].CommitHash)
	assert.Equal(t, "bbb", list[2].CommitHash)
}

func TestNewFixStartsUnanalyzed(t *testing.T) {
	t.Parallel()

	fix := model.NewFixes().GetOrCreate("CVE-2020-1234", "abc123", "u")

	assert.Nil(t, fix.AnalyzedAt)
	assert.Equal(t, -1, fix.FilesChanged)
	assert.Equal(t, -1, fix.LinesAdded)
	assert.Equal(t, -1, fix.LinesDeleted)
	assert.Equal(t, -1, fix.LinesModified)
}

func TestFixRepoOwnerAndName(t *testing.T) {
	t.Parallel()

	fix := model.NewFix(1, "CVE-2020-1234", "abc123", "https://github.com/psf/requests.git")

	assert.Equal(t, "psf", fix.RepoOwner())
	assert.Equal(t, "requests", fix.RepoName())
}

func TestFixRepoNameTrailingSlash(t *testing.T) {
	t.Parallel()

	fix := model.NewFix(1, "CVE-2020-1234", "abc123", "https://github.com/psf/requests/")

	assert.Equal(t, "psf", fix.RepoOwner())
	assert.Equal(t, "requests", fix.RepoName())
}

func TestFixShortHash(t *testing.T) {
	t.Parallel()

	fix := model.NewFix(1, "CVE-2020-1234", "0123456789abcdef", "u")

	assert.Equal(t, "0123456", fix.ShortHash())

	fix.CommitHash = "012"
	assert.Equal(t, "012", fix.ShortHash())
}
