package diffscan

import (
	"regexp"
	"strings"
)

// Class and method detection is a best-effort text heuristic, not a
// parse: a line mentioning "class" inside a string literal or comment
// will be picked up too. That matches how the data sets using this
// output were built.
var (
	classRE  = regexp.MustCompile(`\bclass\s+([A-Za-z_][A-Za-z0-9_]*)`)
	methodRE = regexp.MustCompile(`\bdef\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
)

func matchClass(line string) (string, bool) {
	return matchDefinition(classRE, line)
}

func matchMethod(line string) (string, bool) {
	return matchDefinition(methodRE, line)
}

// matchDefinition requires the block-opening ':' somewhere on the line,
// so a bare "class" word in prose does not count.
func matchDefinition(re *regexp.Regexp, line string) (string, bool) {
	if !strings.ContainsRune(line, ':') {
		return "", false
	}

	m := re.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}

	return m[1], true
}
