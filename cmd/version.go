package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func VersionCmd(commit string) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "print the version of the tool",
		Action: func(c *cli.Context) error {
			fmt.Printf("Version: %s\n", c.App.Version)
			if commit != "" {
				fmt.Printf("Commit:  %s\n", commit)
			}
			return nil
		},
	}
}
