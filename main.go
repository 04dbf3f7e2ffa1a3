package main

import (
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rytakahas/etl-demos/cmd"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = ""
)

func main() {
	isDebug := false
	color.NoColor = false

	app := &cli.App{
		Name:     "dwh",
		Version:  version,
		Usage:    "The CLI used for integrating loan datasets into the bank DWH pipeline",
		Compiled: time.Now(),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "debug",
				Value:       false,
				Usage:       "show debug information",
				Destination: &isDebug,
			},
		},
		Commands: []*cli.Command{
			cmd.Dataset(&isDebug),
			cmd.Render(&isDebug),
			cmd.Load(&isDebug),
			cmd.VersionCmd(commit),
		},
	}

	_ = app.Run(os.Args)
}
