package main

import (
	"github.com/pescuma/vulndig/lib/importers/git"
)

type ImportFixesCmd struct {
	File string `arg:"" help:"Json file with a list of [cve, commit, repository url] entries." type:"existingfile"`
}

func (c *ImportFixesCmd) Run(ctx *context) error {
	return ctx.ws.ImportFixesList(c.File)
}

type ImportCwesCmd struct {
	File string `arg:"" help:"Json file mapping CVE ids to CWE ids." type:"existingfile"`
}

func (c *ImportCwesCmd) Run(ctx *context) error {
	return ctx.ws.ImportCwes(c.File)
}

type ImportReposCmd struct {
	Playground string `arg:"" help:"Directory to clone the repositories into." type:"path"`
	Update     bool   `help:"Re-clone repositories that were already cloned."`
}

func (c *ImportReposCmd) Run(ctx *context) error {
	return ctx.ws.ImportRepos(&git.ReposOptions{
		Playground: c.Playground,
		Update:     c.Update,
	})
}
