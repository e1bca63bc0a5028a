package main

import (
	"github.com/alecthomas/kong"

	"github.com/pescuma/vulndig/lib/workspace"
)

var cli struct {
	Workspace string `short:"w" help:"Workspace to store data. Default is ./.vulndig or ~/.vulndig if that does not exist." type:"path"`

	Show ShowCmd `cmd:"" help:"Show a summary of the imported fixes and repositories."`
	Web  WebCmd  `cmd:"" help:"Serve the imported dataset over HTTP."`

	Config struct {
		Set ConfigSetCmd `cmd:"" help:"Set configuration parameters."`
	} `cmd:""`

	Import struct {
		Fixes ImportFixesCmd `cmd:"" help:"Import the list of vulnerability fixing commits from a json file."`
		Cwes  ImportCwesCmd  `cmd:"" help:"Import CWE labels for already imported fixes."`
		Repos ImportReposCmd `cmd:"" help:"Clone the repositories of the imported fixes."`
	} `cmd:""`

	Checkout CheckoutCmd `cmd:"" help:"Checkout a commit, or its parent, in a cloned repository."`

	Analyze AnalyzeCmd `cmd:"" help:"Analyze the changes introduced by each fix commit."`

	Extract struct {
		Truth ExtractTruthCmd `cmd:"" help:"Write golden truth label files for the labeled fixes."`
		Files ExtractFilesCmd `cmd:"" help:"Write the vulnerable versions of the files changed by each fix."`
	} `cmd:""`

	RunGit RunGitCmd `cmd:"" name:"run-git" help:"Run a git command on all cloned repositories."`
}

type context struct {
	ws *workspace.Workspace
}

func main() {
	ctx := kong.Parse(&cli, kong.ShortUsageOnError())

	ws, err := workspace.NewWorkspace(cli.Workspace)
	ctx.FatalIfErrorf(err)

	err = ctx.Run(&context{
		ws: ws,
	})

	if cerr := ws.Close(); err == nil {
		err = cerr
	}

	ctx.FatalIfErrorf(err)
}
