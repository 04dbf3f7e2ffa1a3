package cmd

import (
	"context"
	"fmt"

	"github.com/rytakahas/etl-demos/pkg/bigquery"
	"github.com/rytakahas/etl-demos/pkg/logger"
	"github.com/rytakahas/etl-demos/pkg/registry"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const loadConcurrency = 4

func Load(isDebug *bool) *cli.Command {
	return &cli.Command{
		Name:  "load",
		Usage: "load every registered CSV into its BigQuery destination table",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to the raw source registry",
				Value: defaultRegistryPath,
			},
			&cli.StringFlag{
				Name:  "credentials-file",
				Usage: "path to a service account JSON file, application default credentials are used otherwise",
			},
			&cli.BoolFlag{
				Name:  "sanitize-header",
				Usage: "replace '.' with '_' in CSV headers before loading",
			},
		},
		Action: func(c *cli.Context) error {
			defer RecoverFromPanic()

			log := makeLogger(*isDebug)

			reg, err := registry.Load(fs, c.String("config"))
			if err != nil {
				errorPrinter.Printf("Failed to load the registry: %v\n", err)
				return cli.Exit("", 1)
			}

			sources := reg.Sources()
			if len(sources) == 0 {
				fmt.Println("No datasets configured yet.")
				return nil
			}

			ctx := context.Background()
			byProject := lo.GroupBy(sources, func(rec registry.Record) string {
				return rec.ProjectID
			})

			for projectID, records := range byProject {
				client, err := bigquery.NewClient(ctx, &bigquery.Config{
					ProjectID:           projectID,
					CredentialsFilePath: c.String("credentials-file"),
				}, fs)
				if err != nil {
					errorPrinter.Printf("Failed to connect to BigQuery for project %s: %v\n", projectID, err)
					return cli.Exit("", 1)
				}

				if err := loadAll(ctx, client, records, c.Bool("sanitize-header"), log); err != nil {
					errorPrinter.Printf("Failed to load the datasets: %v\n", err)
					return cli.Exit("", 1)
				}
			}

			successPrinter.Printf("Loaded %d dataset(s)\n", len(sources))
			return nil
		},
	}
}

type csvLoader interface {
	LoadCSV(ctx context.Context, rec registry.Record, sanitizeHeader bool) error
}

// loadAll runs one load per record, a few at a time, mirroring the per-source
// fan-out of the orchestration layer.
func loadAll(ctx context.Context, loader csvLoader, records []registry.Record, sanitizeHeader bool, log logger.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)

	for _, rec := range records {
		rec := rec
		g.Go(func() error {
			log.Debugf("loading %s from %s", rec.Name, rec.CSVPath)
			if err := loader.LoadCSV(gctx, rec, sanitizeHeader); err != nil {
				return err
			}

			fmt.Printf("Loaded %s into %s.%s.%s\n", rec.CSVPath, rec.ProjectID, rec.DatasetID, rec.TableID)
			return nil
		})
	}

	return g.Wait()
}
