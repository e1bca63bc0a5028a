package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/gertd/go-pluralize"
	"github.com/samber/lo"

	"github.com/pescuma/vulndig/lib/model"
	"github.com/pescuma/vulndig/lib/utils"
)

type ShowCmd struct {
	Repos  bool `short:"r" help:"Also list the repositories."`
	Simple bool `short:"s" help:"Only show totals."`
}

func (c *ShowCmd) Run(ctx *context) error {
	fixes, err := ctx.ws.LoadFixes()
	if err != nil {
		return err
	}

	repos, err := ctx.ws.LoadRepositories()
	if err != nil {
		return err
	}

	c.printTotals(fixes, repos)

	if c.Simple {
		return nil
	}

	c.printFixes(fixes, repos)

	if c.Repos {
		c.printRepos(repos)
	}

	return nil
}

func (c *ShowCmd) printTotals(fixes *model.Fixes, repos *model.Repositories) {
	pc := pluralize.NewClient()

	analyzed := lo.CountBy(fixes.List(), func(f *model.Fix) bool { return f.AnalyzedAt != nil })
	labeled := lo.CountBy(fixes.List(), func(f *model.Fix) bool { return f.CWE != "" })
	cloned := lo.CountBy(repos.List(), func(r *model.Repository) bool { return r.Cloned() })

	fmt.Printf("%v %v (%v analyzed, %v with CWE) in %v %v (%v cloned)\n\n",
		humanize.Comma(int64(fixes.Count())), pc.Pluralize("fix", fixes.Count(), false),
		humanize.Comma(int64(analyzed)),
		humanize.Comma(int64(labeled)),
		humanize.Comma(int64(repos.Count())), pc.Pluralize("repository", repos.Count(), false),
		humanize.Comma(int64(cloned)))
}

func (c *ShowCmd) printFixes(fixes *model.Fixes, repos *model.Repositories) {
	for _, fix := range fixes.List() {
		repo := "?"
		if fix.RepositoryID != nil {
			if r := repos.GetByID(*fix.RepositoryID); r != nil {
				repo = r.Name
			}
		}

		line := fmt.Sprintf("   %-16v %v %v", fix.CVE, fix.ShortHash(), utils.TruncateFilename(repo))

		if fix.CWE != "" {
			line += fmt.Sprintf(" [%v]", fix.CWE)
		}

		if fix.AnalyzedAt != nil {
			line += fmt.Sprintf(" (%v files, +%v -%v ~%v)",
				humanize.Comma(int64(fix.FilesChanged)),
				humanize.Comma(int64(fix.LinesAdded)),
				humanize.Comma(int64(fix.LinesDeleted)),
				humanize.Comma(int64(fix.LinesModified)))
		}

		fmt.Println(line)
	}

	fmt.Println()
}

func (c *ShowCmd) printRepos(repos *model.Repositories) {
	for _, repo := range repos.List() {
		cloned := "not cloned"
		if repo.Cloned() {
			cloned = repo.RootDir
		}

		fmt.Printf("   %-30v %v (%v)\n", utils.TruncateFilename(repo.Name), repo.URL, cloned)
	}

	fmt.Println()
}
