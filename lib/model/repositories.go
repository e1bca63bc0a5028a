package model

import (
	"sort"

	"github.com/samber/lo"
)

type Repositories struct {
	reposByURL map[string]*Repository
	reposByID  map[UUID]*Repository
}

func NewRepositories() *Repositories {
	return &Repositories{
		reposByURL: map[string]*Repository{},
		reposByID:  map[UUID]*Repository{},
	}
}

func (rs *Repositories) GetOrCreate(url string) *Repository {
	return rs.GetOrCreateEx(url, nil)
}

func (rs *Repositories) GetOrCreateEx(url string, id *UUID) *Repository {
	result, ok := rs.reposByURL[url]

	if !ok {
		if id == nil {
			id = lo.ToPtr(NewUUID("r"))
		}

		result = NewRepository(*id, url)
		rs.reposByURL[url] = result
		rs.reposByID[result.ID] = result
	}

	return result
}

func (rs *Repositories) Get(url string) *Repository {
	return rs.reposByURL[url]
}

func (rs *Repositories) GetByID(id UUID) *Repository {
	return rs.reposByID[id]
}

func (rs *Repositories) GetByName(name string) *Repository {
	for _, repo := range rs.reposByURL {
		if repo.Name == name {
			return repo
		}
	}
	return nil
}

func (rs *Repositories) List() []*Repository {
	result := lo.Values(rs.reposByURL)

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result
}

func (rs *Repositories) Count() int {
	return len(rs.reposByURL)
}
