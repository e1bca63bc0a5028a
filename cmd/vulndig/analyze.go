package main

import (
	"github.com/pescuma/vulndig/lib/importers/analyze"
)

type AnalyzeCmd struct {
	Output      string `arg:"" help:"Directory to write the analysis json files to." type:"path"`
	Incremental bool   `default:"true" negatable:"" help:"Don't analyze fixes already analyzed."`
	MaxFixes    int    `help:"Analyze at most this many fixes."`
}

func (c *AnalyzeCmd) Run(ctx *context) error {
	opts := analyze.Options{
		Output:      c.Output,
		Incremental: c.Incremental,
	}

	if c.MaxFixes > 0 {
		opts.MaxFixes = toOption(c.MaxFixes)
	}

	return ctx.ws.Analyze(&opts)
}
