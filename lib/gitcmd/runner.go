package gitcmd

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Runner shells out to the git command line tool. go-git covers most of
// what the importers need, but the diff text consumed by diffscan has to
// be byte-identical to what `git diff` prints, so that part stays with
// the real git.
type Runner struct {
}

func NewRunner() *Runner {
	return &Runner{}
}

// Diff returns the unified diff between two revisions, unmodified.
func (r *Runner) Diff(dir string, from string, to string) (string, error) {
	return r.run(dir, "diff", from, to)
}

// DiffStat returns the --stat summary between two revisions.
func (r *Runner) DiffStat(dir string, from string, to string) (string, error) {
	result, err := r.run(dir, "diff", "--stat", from, to)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(result), nil
}

// ChangedFiles lists the files touched by a commit. An empty result is
// a single empty string, which callers must filter out.
func (r *Runner) ChangedFiles(dir string, commit string) ([]string, error) {
	result, err := r.run(dir, "diff-tree", "--no-commit-id", "--name-only", "-r", commit)
	if err != nil {
		return nil, err
	}

	return strings.Split(strings.TrimSpace(result), "\n"), nil
}

func (r *Runner) RevParse(dir string, revision string) (string, error) {
	result, err := r.run(dir, "rev-parse", revision)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(result), nil
}

func (r *Runner) Checkout(dir string, revision string) error {
	_, err := r.run(dir, "checkout", revision)
	return err
}

func (r *Runner) run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return "", errors.Wrapf(err, "git %v: %v", strings.Join(args, " "), strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}
