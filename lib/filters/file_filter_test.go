package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ignore "github.com/sabhiram/go-gitignore"
)

func TestIncludesMatchBaseName(t *testing.T) {
	t.Parallel()

	filter, err := NewFileFilter([]string{"*.py"}, nil)
	require.NoError(t, err)

	assert.True(t, filter("django/http/request.py"))
	assert.False(t, filter("docs/index.rst"))
}

func TestExcludesMatchPaths(t *testing.T) {
	t.Parallel()

	filter, err := NewFileFilter(nil, []string{"**/test*/**", "**/*_test.py"})
	require.NoError(t, err)

	assert.True(t, filter("django/http/request.py"))
	assert.False(t, filter("django/tests/regression.py"))
	assert.False(t, filter("django/http/request_test.py"))
}

func TestExcludesWinOverIncludes(t *testing.T) {
	t.Parallel()

	filter, err := NewFileFilter([]string{"*.py"}, []string{"**/tests/**"})
	require.NoError(t, err)

	assert.False(t, filter("pkg/tests/check.py"))
}

func TestInvalidPatterns(t *testing.T) {
	t.Parallel()

	_, err := NewFileFilter([]string{"[unclosed"}, nil)
	assert.Error(t, err)

	_, err = NewFileFilter(nil, []string{"[unclosed"})
	assert.Error(t, err)
}

func TestGitignore(t *testing.T) {
	t.Parallel()

	filter, err := NewFileFilter([]string{"*.py"}, nil)
	require.NoError(t, err)

	filter = WithGitignore(filter, ignore.CompileIgnoreLines("generated/"))

	assert.True(t, filter("app/main.py"))
	assert.False(t, filter("generated/schema.py"))
}
