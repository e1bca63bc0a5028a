package diffscan

import (
	"strings"
	"testing"

	"github.com/bloomberg/go-testgroup"
	"github.com/samber/lo"
)

func TestScan(t *testing.T) {
	testgroup.RunInParallel(t, &ScanTests{})
}

type ScanTests struct {
}

func (g *ScanTests) SimpleCommit(t *testgroup.T) {
	diff := strings.Join([]string{
		"diff --git a/foo.py b/foo.py",
		"@@ -1,3 +1,4 @@",
		" class Foo:",
		"+    def bar(self): pass",
		" ",
		"-    pass",
	}, "\n")

	cs, err := Scan(diff)
	t.NoError(err)

	t.Equal([]string{"foo.py"}, cs.FilesList)
	t.Len(cs.Files, 1)

	file := cs.Files["foo.py"]
	t.Equal(1, file.Additions)
	t.Equal(1, file.Deletions)
	t.Equal(2, file.Changes)

	t.Equal([]LineChange{
		{Kind: Addition, LineNumber: 2, Content: "    def bar(self): pass", Class: "Foo"},
		{Kind: Deletion, LineNumber: 3, Content: "    pass", Class: "Foo"},
	}, file.Lines)
}

func (g *ScanTests) EmptyDiff(t *testgroup.T) {
	cs, err := Scan("")

	t.NoError(err)
	t.Empty(cs.Files)
	t.Equal([]string{""}, cs.FilesList)
}

func (g *ScanTests) HunkWithoutLengths(t *testgroup.T) {
	diff := strings.Join([]string{
		"diff --git a/a.py b/a.py",
		"@@ -10 +10 @@",
		"-old",
		"+new",
	}, "\n")

	cs, err := Scan(diff)
	t.NoError(err)

	file := cs.Files["a.py"]
	t.Equal(10, file.Lines[0].LineNumber)
	t.Equal(10, file.Lines[1].LineNumber)
}

func (g *ScanTests) MalformedHunkRange(t *testgroup.T) {
	diff := strings.Join([]string{
		"diff --git a/a.py b/a.py",
		"@@ -a,b +1,1 @@",
		"+x",
	}, "\n")

	_, err := Scan(diff)

	t.Error(err)
	t.ErrorContains(err, "@@ -a,b +1,1 @@")

	var parseErr *ParseError
	t.ErrorAs(err, &parseErr)
	t.Equal("@@ -a,b +1,1 @@", parseErr.Line)
}

func (g *ScanTests) MalformedHunkKeepsEarlierFiles(t *testgroup.T) {
	diff := strings.Join([]string{
		"diff --git a/good.py b/good.py",
		"@@ -1,1 +1,1 @@",
		"-old",
		"+new",
		"diff --git a/bad.py b/bad.py",
		"@@ -x +1 @@",
		"+x",
	}, "\n")

	cs, err := Scan(diff)

	t.Error(err)
	t.Equal(2, cs.Files["good.py"].Changes)
}

func (g *ScanTests) BodyLinesBeforeAnyHeader(t *testgroup.T) {
	diff := strings.Join([]string{
		"+orphan add",
		"-orphan del",
	}, "\n")

	cs, err := Scan(diff)
	t.NoError(err)

	file := cs.Files[UnknownFile]
	t.Equal(1, file.Additions)
	t.Equal(1, file.Deletions)

	// No hunk header was seen, so there are no line numbers to record
	t.Empty(file.Lines)
}

func (g *ScanTests) CountsMatchRecordedLines(t *testgroup.T) {
	diff := strings.Join([]string{
		"diff --git a/a.py b/a.py",
		"@@ -1,4 +1,5 @@",
		" a",
		"+b",
		"+c",
		" d",
		"-e",
		" f",
		"diff --git a/b.py b/b.py",
		"@@ -7,2 +7,1 @@",
		"-g",
		" h",
	}, "\n")

	cs, err := Scan(diff)
	t.NoError(err)

	for _, file := range cs.Files {
		t.Equal(file.Changes, file.Additions+file.Deletions)
		t.Equal(file.Additions, lo.CountBy(file.Lines, func(l LineChange) bool { return l.Kind == Addition }))
		t.Equal(file.Deletions, lo.CountBy(file.Lines, func(l LineChange) bool { return l.Kind == Deletion }))
	}

	t.Equal([]string{"a.py", "b.py"}, cs.FilesList)
}

func (g *ScanTests) CursorsAdvancePerLine(t *testgroup.T) {
	diff := strings.Join([]string{
		"diff --git a/a.py b/a.py",
		"@@ -3,3 +3,4 @@",
		" x",
		"+y",
		"+z",
		" w",
		"-v",
	}, "\n")

	cs, err := Scan(diff)
	t.NoError(err)

	lines := cs.Files["a.py"].Lines
	t.Equal(4, lines[0].LineNumber)
	t.Equal(5, lines[1].LineNumber)
	t.Equal(5, lines[2].LineNumber)
}

func (g *ScanTests) FileBoundaryLinesAreNotChanges(t *testgroup.T) {
	diff := strings.Join([]string{
		"diff --git a/a.py b/a.py",
		"index abc1234..def5678 100644",
		"--- a/a.py",
		"+++ b/a.py",
		"@@ -1,1 +1,1 @@",
		"-old",
		"+new",
	}, "\n")

	cs, err := Scan(diff)
	t.NoError(err)

	file := cs.Files["a.py"]
	t.Equal(1, file.Additions)
	t.Equal(1, file.Deletions)
	t.Equal(1, file.Lines[0].LineNumber)
	t.Equal(1, file.Lines[1].LineNumber)
}

func (g *ScanTests) ClassContextResetsOnNewFile(t *testgroup.T) {
	diff := strings.Join([]string{
		"diff --git a/a.py b/a.py",
		"@@ -1,2 +1,3 @@",
		" class Alpha:",
		"+    x = 1",
		"diff --git a/b.py b/b.py",
		"@@ -1,1 +1,2 @@",
		" import os",
		"+import sys",
	}, "\n")

	cs, err := Scan(diff)
	t.NoError(err)

	t.Equal("Alpha", cs.Files["a.py"].Lines[0].Class)
	t.Equal("", cs.Files["b.py"].Lines[0].Class)
}

func (g *ScanTests) ClassContextResetsOnNewHunk(t *testgroup.T) {
	diff := strings.Join([]string{
		"diff --git a/a.py b/a.py",
		"@@ -1,2 +1,3 @@",
		" class Alpha:",
		"+    x = 1",
		"@@ -30,1 +31,2 @@",
		" value = 2",
		"+other = 3",
	}, "\n")

	cs, err := Scan(diff)
	t.NoError(err)

	lines := cs.Files["a.py"].Lines
	t.Equal("Alpha", lines[0].Class)
	t.Equal("", lines[1].Class)
}

func (g *ScanTests) LookaheadSkipsChangedLinesAndTakesFirstMatch(t *testgroup.T) {
	diff := strings.Join([]string{
		"diff --git a/a.py b/a.py",
		"@@ -1,5 +1,6 @@",
		"+class Added:",
		" class First:",
		" class Second:",
		"+    x = 1",
	}, "\n")

	cs, err := Scan(diff)
	t.NoError(err)

	lines := cs.Files["a.py"].Lines
	t.Equal("First", lines[0].Class)

	// Context lines seen while scanning still update the tracked class
	t.Equal("Second", lines[1].Class)
}

func (g *ScanTests) MethodContextFromContextLines(t *testgroup.T) {
	diff := strings.Join([]string{
		"diff --git a/a.py b/a.py",
		"@@ -1,4 +1,5 @@",
		" class Service:",
		"     def handle(self):",
		"+        check(input)",
	}, "\n")

	cs, err := Scan(diff)
	t.NoError(err)

	file := cs.Files["a.py"]
	t.Equal("Service", file.Lines[0].Class)
	t.Equal("handle", file.Lines[0].Method)

	t.Len(file.ContextChanges, 1)
	t.Equal("Service::handle", file.ContextChanges[0].Key)
}

func (g *ScanTests) ContextKeyWithoutClass(t *testgroup.T) {
	diff := strings.Join([]string{
		"diff --git a/a.py b/a.py",
		"@@ -1,3 +1,4 @@",
		" def main():",
		"+    run()",
	}, "\n")

	cs, err := Scan(diff)
	t.NoError(err)

	file := cs.Files["a.py"]
	t.Equal("Unknown::main", file.ContextChanges[0].Key)
}

func (g *ScanTests) PassThroughFields(t *testgroup.T) {
	diff := strings.Join([]string{
		"diff --git a/a.py b/a.py",
		"@@ -1,1 +1,1 @@",
		"-old",
		"+new",
	}, "\n")

	cs, err := Scan(diff)
	t.NoError(err)

	t.Equal(diff, cs.FullDiff)
	t.Equal("", cs.StatSummary)
}

func (g *ScanTests) ScanIsIdempotent(t *testgroup.T) {
	diff := strings.Join([]string{
		"diff --git a/a.py b/a.py",
		"@@ -1,3 +1,4 @@",
		" class Foo:",
		"+    def bar(self): pass",
		" ",
		"-    pass",
	}, "\n")

	first, err := Scan(diff)
	t.NoError(err)

	second, err := Scan(diff)
	t.NoError(err)

	t.Equal(first, second)
}
