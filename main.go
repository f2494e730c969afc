// Package main is the entry point for the mwembed application.
package main

import (
	"github.com/mwembed/mwembed/cmd"
	"github.com/mwembed/mwembed/config"
	"github.com/mwembed/mwembed/internal/cache"
	"github.com/mwembed/mwembed/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cache.CollectGarbage()

	cmd.Execute()
}
