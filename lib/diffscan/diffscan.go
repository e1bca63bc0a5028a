package diffscan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pescuma/vulndig/lib/utils"
)

// UnknownFile is the bucket used for body lines that show up before any
// file header. git never produces such a diff, but truncated or
// hand-edited ones do.
const UnknownFile = "<unknown>"

// contextLookahead is how many lines after a hunk header are inspected
// for an enclosing class definition. The first match wins.
const contextLookahead = 20

type LineKind string

const (
	Addition LineKind = "addition"
	Deletion LineKind = "deletion"
)

type LineChange struct {
	Kind       LineKind `json:"type"`
	LineNumber int      `json:"line_number"`
	Content    string   `json:"content"`
	Class      string   `json:"class,omitempty"`
	Method     string   `json:"method,omitempty"`
}

// ContextChange is a LineChange that happened inside a known class or
// method, keyed "<class-or-Unknown>::<method-or-global>".
type ContextChange struct {
	Class   string   `json:"class,omitempty"`
	Method  string   `json:"method,omitempty"`
	Key     string   `json:"key"`
	Line    int      `json:"line"`
	Kind    LineKind `json:"type"`
	Content string   `json:"content"`
}

type FileChanges struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
	Changes   int `json:"changes"`

	Lines          []LineChange    `json:"line_changes"`
	ContextChanges []ContextChange `json:"class_method_changes,omitempty"`
}

type Changes struct {
	Files map[string]*FileChanges `json:"files"`

	// FilesList has the file paths in the order their headers appeared.
	// For an empty diff it holds a single empty string, which callers
	// must filter out.
	FilesList []string `json:"files_list"`

	// StatSummary and FullDiff are pass-through fields for downstream
	// consumers and are never modified here.
	StatSummary string `json:"diff_summary"`
	FullDiff    string `json:"full_diff"`
}

func (c *Changes) getOrCreateFile(path string) *FileChanges {
	result, ok := c.Files[path]
	if !ok {
		result = &FileChanges{}
		c.Files[path] = result
	}
	return result
}

type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed hunk header '%v': %v", e.Line, e.Reason)
}

// scanner is the per-invocation state of one pass. Cursors are -1 while
// no hunk header was seen yet.
type scanner struct {
	result *Changes

	file    string
	class   string
	method  string
	oldLine int
	newLine int
}

// Scan classifies every line of a unified diff, in one pass.
//
// On a ParseError the files classified before the offending hunk are kept
// in the returned Changes, so partial results are still usable for
// diagnosis.
func Scan(diff string) (*Changes, error) {
	s := scanner{
		result: &Changes{
			Files:    map[string]*FileChanges{},
			FullDiff: diff,
		},
		oldLine: -1,
		newLine: -1,
	}

	lines := strings.Split(diff, "\n")

	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "diff --git"):
			s.onFileHeader(line)

		case strings.HasPrefix(line, "@@"):
			err := s.onHunkHeader(line, lines, i)
			if err != nil {
				return s.result, err
			}

		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			// Pre/post-image boundary, not a change and not context

		case strings.HasPrefix(line, "+"):
			s.onAddition(line)

		case strings.HasPrefix(line, "-"):
			s.onDeletion(line)

		default:
			s.onContext(line)
		}
	}

	if len(s.result.FilesList) == 0 {
		s.result.FilesList = []string{""}
	}

	return s.result, nil
}

func (s *scanner) onFileHeader(line string) {
	path := line
	if i := strings.LastIndex(line, " b/"); i >= 0 {
		path = line[i+3:]
	}

	s.file = path
	s.class = ""
	s.method = ""

	s.result.FilesList = append(s.result.FilesList, path)
}

func (s *scanner) onHunkHeader(line string, lines []string, at int) error {
	oldStart, newStart, err := parseHunkRanges(line)
	if err != nil {
		return err
	}

	s.oldLine = oldStart
	s.newLine = newStart
	s.class = ""
	s.method = ""

	// Lookahead over the following context lines for the enclosing
	// class. This does not consume input.
	for i := at + 1; i < len(lines) && i <= at+contextLookahead; i++ {
		next := lines[i]
		if strings.HasPrefix(next, "+") || strings.HasPrefix(next, "-") {
			continue
		}

		if name, ok := matchClass(next); ok {
			s.class = name
			break
		}
	}

	return nil
}

func parseHunkRanges(line string) (int, int, error) {
	parts := strings.SplitN(line, "@@", 3)
	if len(parts) < 3 {
		return 0, 0, &ParseError{Line: line, Reason: "missing closing @@"}
	}

	ranges := strings.Fields(parts[1])
	if len(ranges) < 2 {
		return 0, 0, &ParseError{Line: line, Reason: "expected two ranges"}
	}

	oldStart, err := parseRangeStart(ranges[0])
	if err != nil {
		return 0, 0, &ParseError{Line: line, Reason: err.Error()}
	}

	newStart, err := parseRangeStart(ranges[1])
	if err != nil {
		return 0, 0, &ParseError{Line: line, Reason: err.Error()}
	}

	return utils.Abs(oldStart), newStart, nil
}

// parseRangeStart parses the start of a "-1,3" / "+1" range token. The
// length component is optional and defaults to 1.
func parseRangeStart(token string) (int, error) {
	start, _, _ := strings.Cut(token, ",")

	result, err := strconv.Atoi(start)
	if err != nil {
		return 0, fmt.Errorf("non-numeric range '%v'", token)
	}

	return result, nil
}

func (s *scanner) onAddition(line string) {
	file := s.currentFile()
	file.Additions++
	file.Changes++

	if s.newLine < 0 {
		return
	}

	s.record(file, Addition, s.newLine, line[1:])
	s.newLine++
}

func (s *scanner) onDeletion(line string) {
	file := s.currentFile()
	file.Deletions++
	file.Changes++

	if s.oldLine < 0 {
		return
	}

	s.record(file, Deletion, s.oldLine, line[1:])
	s.oldLine++
}

func (s *scanner) onContext(line string) {
	if s.oldLine >= 0 {
		s.oldLine++
	}
	if s.newLine >= 0 {
		s.newLine++
	}

	if name, ok := matchClass(line); ok {
		s.class = name
	}
	if name, ok := matchMethod(line); ok {
		s.method = name
	}
}

func (s *scanner) currentFile() *FileChanges {
	if s.file == "" {
		return s.result.getOrCreateFile(UnknownFile)
	}
	return s.result.getOrCreateFile(s.file)
}

func (s *scanner) record(file *FileChanges, kind LineKind, lineNumber int, content string) {
	file.Lines = append(file.Lines, LineChange{
		Kind:       kind,
		LineNumber: lineNumber,
		Content:    content,
		Class:      s.class,
		Method:     s.method,
	})

	if s.class == "" && s.method == "" {
		return
	}

	file.ContextChanges = append(file.ContextChanges, ContextChange{
		Class:   s.class,
		Method:  s.method,
		Key:     contextKey(s.class, s.method),
		Line:    lineNumber,
		Kind:    kind,
		Content: content,
	})
}

func contextKey(class, method string) string {
	if class == "" {
		class = "Unknown"
	}
	if method == "" {
		method = "global"
	}
	return class + "::" + method
}
