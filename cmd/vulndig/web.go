package main

import (
	"github.com/pescuma/vulndig/lib/consoles"
	"github.com/pescuma/vulndig/lib/server"
	"github.com/pescuma/vulndig/lib/storages"
)

type WebCmd struct {
	Port uint `default:"2428" help:"Port to listen on."`
}

func (c *WebCmd) Run(ctx *context) error {
	return ctx.ws.Execute(func(console consoles.Console, storage storages.Storage) error {
		return server.Run(console, storage, &server.Options{
			Port: c.Port,
		})
	})
}
