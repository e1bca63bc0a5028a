package main

import (
	"github.com/pescuma/vulndig/lib/extractors/truth"
	"github.com/pescuma/vulndig/lib/extractors/vulfiles"
)

type ExtractTruthCmd struct {
	Output string `arg:"" help:"Directory to write the golden truth files to." type:"path"`
}

func (c *ExtractTruthCmd) Run(ctx *context) error {
	return ctx.ws.ExtractTruth(&truth.Options{
		Output: c.Output,
	})
}

type ExtractFilesCmd struct {
	Output    string   `arg:"" help:"Directory to write the vulnerable files to." type:"path"`
	Include   []string `short:"i" help:"File name globs to include. Default is all source code files."`
	Exclude   []string `short:"e" help:"Path patterns to exclude. Default excludes test code."`
	Gitignore bool     `default:"true" negatable:"" help:"Respect the repository .gitignore when extracting files."`
}

func (c *ExtractFilesCmd) Run(ctx *context) error {
	return ctx.ws.ExtractVulFiles(&vulfiles.Options{
		Output:           c.Output,
		Includes:         c.Include,
		Excludes:         c.Exclude,
		RespectGitignore: c.Gitignore,
	})
}
