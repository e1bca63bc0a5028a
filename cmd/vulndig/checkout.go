package main

type CheckoutCmd struct {
	Repo     string `arg:"" help:"Name of the cloned repository."`
	Revision string `arg:"" help:"Commit hash or revision to checkout."`
	Parent   bool   `short:"p" help:"Checkout the first parent of the revision instead."`
}

func (c *CheckoutCmd) Run(ctx *context) error {
	return ctx.ws.Checkout(c.Repo, c.Revision, c.Parent)
}
