package cmd

import (
	"github.com/urfave/cli"

	"github.com/SpaceCat-Chan/ray-otami/log"
)

var logger = log.New("ray-otami")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
