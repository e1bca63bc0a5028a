package storages

import (
	"github.com/pescuma/vulndig/lib/model"
)

type Storage interface {
	LoadFixes() (*model.Fixes, error)
	WriteFixes() error
	WriteFix(fix *model.Fix) error

	LoadRepositories() (*model.Repositories, error)
	WriteRepositories() error
	WriteRepository(repo *model.Repository) error

	LoadConfig() (*map[string]string, error)
	WriteConfig() error

	Close() error
}

type Factory = func(path string) (Storage, error)
