package filters

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	ignore "github.com/sabhiram/go-gitignore"
)

// FileFilter decides whether a repository-relative path is interesting.
type FileFilter func(path string) bool

// NewFileFilter builds a filter from name globs (matched against the
// base name) and path patterns (matched against the whole path, with
// doublestar `**` support). Empty includes accept everything.
func NewFileFilter(includes []string, excludes []string) (FileFilter, error) {
	includeGlobs := make([]glob.Glob, 0, len(includes))
	for _, rule := range includes {
		g, err := glob.Compile(rule)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid file glob: %v", rule)
		}

		includeGlobs = append(includeGlobs, g)
	}

	for _, rule := range excludes {
		if !doublestar.ValidatePathPattern(rule) {
			return nil, errors.Errorf("invalid path pattern: %v", rule)
		}
	}

	return func(path string) bool {
		path = filepath.ToSlash(path)

		for _, rule := range excludes {
			if m, err := doublestar.PathMatch(rule, path); err == nil && m {
				return false
			}
		}

		if len(includeGlobs) == 0 {
			return true
		}

		name := filepath.Base(path)
		for _, g := range includeGlobs {
			if g.Match(name) {
				return true
			}
		}

		return false
	}, nil
}

// WithGitignore further rejects paths that the repository's .gitignore
// rules ignore.
func WithGitignore(filter FileFilter, matcher *ignore.GitIgnore) FileFilter {
	if matcher == nil {
		return filter
	}

	return func(path string) bool {
		if matcher.MatchesPath(path) {
			return false
		}

		return filter(path)
	}
}
