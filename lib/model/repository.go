package model

import (
	"time"
)

type Repository struct {
	ID      UUID
	Name    string
	Owner   string
	URL     string
	RootDir string
	VCS     string
	Branch  string

	ClonedAt *time.Time

	Data map[string]string
}

func NewRepository(id UUID, url string) *Repository {
	return &Repository{
		ID:   id,
		URL:  url,
		Data: map[string]string{},
	}
}

func (r *Repository) Cloned() bool {
	return r.ClonedAt != nil
}

func (r *Repository) MarkCloned(at time.Time) {
	at = at.UTC().Round(time.Second)
	r.ClonedAt = &at
}
