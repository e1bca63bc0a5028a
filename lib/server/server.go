package server

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/pescuma/vulndig/lib/consoles"
	"github.com/pescuma/vulndig/lib/model"
	"github.com/pescuma/vulndig/lib/storages"
)

type Options struct {
	Port uint
}

// Run serves the imported dataset read-only over HTTP.
func Run(console consoles.Console, storage storages.Storage, opts *Options) error {
	s := newServer(opts)

	console.Printf("Loading existing data...\n")

	err := s.load(storage)
	if err != nil {
		return err
	}

	console.Printf("Starting server on port %v...\n", s.opts.Port)

	return s.run()
}

type server struct {
	opts *Options

	fixes *model.Fixes
	repos *model.Repositories
}

func newServer(opts *Options) *server {
	if opts == nil {
		opts = &Options{}
	}
	if opts.Port == 0 {
		opts.Port = 2428
	}

	return &server{
		opts: opts,
	}
}

func (s *server) load(storage storages.Storage) error {
	var err error

	s.fixes, err = storage.LoadFixes()
	if err != nil {
		return err
	}

	s.repos, err = storage.LoadRepositories()
	if err != nil {
		return err
	}

	return nil
}

func (s *server) run() error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	s.initFixes(r)
	s.initRepos(r)
	s.initStats(r)

	return r.Run(fmt.Sprintf(":%v", s.opts.Port))
}
