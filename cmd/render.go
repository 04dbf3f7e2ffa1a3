package cmd

import (
	"fmt"

	"github.com/rytakahas/etl-demos/pkg/adapter"
	"github.com/rytakahas/etl-demos/pkg/registry"
	"github.com/rytakahas/etl-demos/pkg/staging"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func Render(isDebug *bool) *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "print the staging model and registry entry for a CSV without touching any config",
		Args:      true,
		ArgsUsage: "[path to the CSV file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "project-id",
				Usage: "the GCP project to use in the rendered registry entry",
				Value: "my-project",
			},
			&cli.StringFlag{
				Name:  "dataset-id",
				Usage: "the BigQuery dataset to use in the rendered registry entry",
				Value: "raw",
			},
		},
		Action: func(c *cli.Context) error {
			defer RecoverFromPanic()

			if !c.Args().Present() {
				errorPrinter.Println("Please give the path to the CSV file: dwh render <path to the CSV>")
				return cli.Exit("", 1)
			}

			d := &DatasetCommand{fs: fs, logger: makeLogger(*isDebug)}
			err := d.Render(c.Args().First(), c.String("project-id"), c.String("dataset-id"))
			if err != nil {
				errorPrinter.Printf("Failed to render the dataset: %v\n", err)
				return cli.Exit("", 1)
			}

			return nil
		},
	}
}

// Render scans the CSV and prints the generated artifacts to stdout, a dry-run
// version of Add with no side effects.
func (d *DatasetCommand) Render(csvPath, projectID, datasetID string) error {
	aliases := adapter.DefaultAliases()

	ds, err := adapter.Scan(d.fs, csvPath, aliases, 0)
	if err != nil {
		return err
	}

	d.printReport(ds, aliases)

	sourceName := staging.SourceName(csvPath)
	sql, err := staging.BuildModel(ds.Mapping, sourceName)
	if err != nil {
		return err
	}

	infoPrinter.Println("Generated staging model:")
	fmt.Println(sql)
	fmt.Println()

	rec := registry.NewRecord(sourceName, projectID, datasetID, sourceName, csvPath)
	out, err := yaml.Marshal(map[string][]registry.Record{"raw_sources": {rec}})
	if err != nil {
		return err
	}

	infoPrinter.Println("Generated registry entry:")
	fmt.Print(string(out))

	return nil
}
