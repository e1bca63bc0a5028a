package linediff

import (
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff is one run of equal, inserted or deleted lines.
type Diff struct {
	Type  Operation
	Lines int
}

type Operation int8

const (
	DiffDelete Operation = Operation(diffmatchpatch.DiffDelete)
	DiffInsert Operation = Operation(diffmatchpatch.DiffInsert)
	DiffEqual  Operation = Operation(diffmatchpatch.DiffEqual)
)

func Do(src, dst string) []Diff {
	return DoWithTimeout(src, dst, time.Minute)
}

func DoWithTimeout(src, dst string, timeout time.Duration) []Diff {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = timeout

	wSrc, wDst := textsToLineIndexes(src, dst)

	return toLineDiffs(dmp.DiffMainRunes(wSrc, wDst, false))
}

// Stats condenses a line diff into added/deleted/modified counts.
// Modified is the paired part of add and delete runs that happen without
// an unchanged line in the middle.
type Stats struct {
	Added    int
	Deleted  int
	Modified int
}

func ComputeStats(diffs []Diff) Stats {
	result := Stats{}

	add := 0
	del := 0

	flush := func() {
		m := min(add, del)
		result.Modified += m
		result.Added += add - m
		result.Deleted += del - m
		add = 0
		del = 0
	}

	for _, d := range diffs {
		switch d.Type {
		case DiffInsert:
			add += d.Lines
		case DiffDelete:
			del += d.Lines
		default:
			flush()
		}
	}
	flush()

	return result
}

func toLineDiffs(diffs []diffmatchpatch.Diff) []Diff {
	result := make([]Diff, 0, len(diffs))
	for _, d := range diffs {
		result = append(result, Diff{
			Type:  Operation(d.Type),
			Lines: len(d.Text),
		})
	}
	return result
}

func textsToLineIndexes(text1, text2 string) ([]rune, []rune) {
	lineToIndex := make(map[string]int)
	indexes1 := textToLineIndexes(text1, lineToIndex)
	indexes2 := textToLineIndexes(text2, lineToIndex)
	return indexes1, indexes2
}

func textToLineIndexes(text string, lineToIndex map[string]int) []rune {
	lines := strings.SplitAfter(text, "\n")

	result := make([]rune, len(lines))
	for i, line := range lines {
		lineValue, ok := lineToIndex[line]

		if !ok {
			lineValue = len(lineToIndex)
			lineToIndex[line] = lineValue
		}

		result[i] = rune(lineValue)
	}
	return result
}
