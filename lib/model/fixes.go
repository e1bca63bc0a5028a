package model

import (
	"sort"

	"github.com/samber/lo"
)

type Fixes struct {
	fixesByKey map[string]*Fix
	fixesByID  map[ID]*Fix

	maxID ID
}

func NewFixes() *Fixes {
	return &Fixes{
		fixesByKey: map[string]*Fix{},
		fixesByID:  map[ID]*Fix{},
	}
}

func (fs *Fixes) GetOrCreate(cve string, commitHash string, repoURL string) *Fix {
	return fs.GetOrCreateEx(cve, commitHash, repoURL, nil)
}

func (fs *Fixes) GetOrCreateEx(cve string, commitHash string, repoURL string, id *ID) *Fix {
	key := fixKey(cve, commitHash)

	result, ok := fs.fixesByKey[key]
	if !ok {
		result = NewFix(createID(&fs.maxID, id), cve, commitHash, repoURL)
		fs.fixesByKey[key] = result
		fs.fixesByID[result.ID] = result
	}

	return result
}

func (fs *Fixes) Get(cve string, commitHash string) *Fix {
	return fs.fixesByKey[fixKey(cve, commitHash)]
}

func (fs *Fixes) GetByID(id ID) *Fix {
	return fs.fixesByID[id]
}

func (fs *Fixes) List() []*Fix {
	result := lo.Values(fs.fixesByKey)

	sort.Slice(result, func(i, j int) bool {
		if result[i].CVE != result[j].CVE {
			return result[i].CVE < result[j].CVE
		}
		return result[i].CommitHash < result[j].CommitHash
	})

	return result
}

func (fs *Fixes) ListByCVE(cve string) []*Fix {
	return lo.Filter(fs.List(), func(f *Fix, _ int) bool { return f.CVE == cve })
}

func (fs *Fixes) Count() int {
	return len(fs.fixesByKey)
}

func fixKey(cve string, commitHash string) string {
	return cve + "\n" + commitHash
}
