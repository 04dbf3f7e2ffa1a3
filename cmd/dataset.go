package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	errors2 "github.com/pkg/errors"
	"github.com/rytakahas/etl-demos/pkg/adapter"
	"github.com/rytakahas/etl-demos/pkg/logger"
	"github.com/rytakahas/etl-demos/pkg/manifest"
	"github.com/rytakahas/etl-demos/pkg/registry"
	"github.com/rytakahas/etl-demos/pkg/staging"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
)

func Dataset(isDebug *bool) *cli.Command {
	return &cli.Command{
		Name:  "dataset",
		Usage: "manage the datasets registered in the pipeline",
		Subcommands: []*cli.Command{
			AddDataset(isDebug),
			ListDatasets(),
		},
	}
}

func AddDataset(isDebug *bool) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "analyze a CSV, generate its staging model and register it in the pipeline",
		Args:      true,
		ArgsUsage: "[path to the CSV file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "project-id",
				Usage:    "the GCP project the raw table lives in",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "dataset-id",
				Usage:    "the BigQuery dataset the raw table lives in",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to the raw source registry",
				Value: defaultRegistryPath,
			},
			&cli.StringFlag{
				Name:  "sources",
				Usage: "path to the dbt sources manifest",
				Value: defaultSourcesPath,
			},
			&cli.StringFlag{
				Name:  "staging-dir",
				Usage: "directory the generated staging models are written to",
				Value: defaultStagingDir,
			},
			&cli.StringFlag{
				Name:  "aliases",
				Usage: "optional YAML file overriding the built-in column alias table",
			},
			&cli.BoolFlag{
				Name:  "no-backup",
				Usage: "skip creating a backup of the existing registry",
			},
		},
		Action: func(c *cli.Context) error {
			defer RecoverFromPanic()

			if !c.Args().Present() {
				errorPrinter.Println("Please give the path to the CSV file: dwh dataset add <path to the CSV>")
				return cli.Exit("", 1)
			}

			d := &DatasetCommand{fs: fs, logger: makeLogger(*isDebug)}
			err := d.Add(&AddOptions{
				CSVPath:      c.Args().First(),
				ProjectID:    c.String("project-id"),
				DatasetID:    c.String("dataset-id"),
				RegistryPath: c.String("config"),
				SourcesPath:  c.String("sources"),
				StagingDir:   c.String("staging-dir"),
				AliasesPath:  c.String("aliases"),
				NoBackup:     c.Bool("no-backup"),
			})
			if err != nil {
				errorPrinter.Printf("Failed to add the dataset: %v\n", err)
				return cli.Exit("", 1)
			}

			return nil
		},
	}
}

func ListDatasets() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list the datasets registered in the pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to the raw source registry",
				Value: defaultRegistryPath,
			},
		},
		Action: func(c *cli.Context) error {
			defer RecoverFromPanic()

			d := &DatasetCommand{fs: fs, logger: makeLogger(false)}
			if err := d.List(c.String("config")); err != nil {
				errorPrinter.Printf("Failed to list the datasets: %v\n", err)
				return cli.Exit("", 1)
			}

			return nil
		},
	}
}

type AddOptions struct {
	CSVPath      string
	ProjectID    string
	DatasetID    string
	RegistryPath string
	SourcesPath  string
	StagingDir   string
	AliasesPath  string
	SampleSize   int
	NoBackup     bool
}

type DatasetCommand struct {
	fs     afero.Fs
	logger logger.Logger
}

// Add runs the whole integration flow for one CSV: scan, report, generate the
// staging model, then merge the source into the registry and the manifest.
// All validation happens before any config file is touched.
func (d *DatasetCommand) Add(opts *AddOptions) error {
	aliases := adapter.DefaultAliases()
	if opts.AliasesPath != "" {
		loaded, err := adapter.LoadAliases(d.fs, opts.AliasesPath)
		if err != nil {
			return errors2.Wrap(err, "failed to load the alias table")
		}
		aliases = loaded
	}

	ds, err := adapter.Scan(d.fs, opts.CSVPath, aliases, opts.SampleSize)
	if err != nil {
		return err
	}

	d.printReport(ds, aliases)

	sourceName := staging.SourceName(opts.CSVPath)
	modelName := staging.ModelName(opts.CSVPath)

	sql, err := staging.BuildModel(ds.Mapping, sourceName)
	if err != nil {
		return err
	}

	csvPath := opts.CSVPath
	if abs, err := filepath.Abs(csvPath); err == nil {
		csvPath = abs
	}
	rec := registry.NewRecord(sourceName, opts.ProjectID, opts.DatasetID, sourceName, csvPath)

	reg, err := registry.Load(d.fs, opts.RegistryPath)
	if err != nil {
		return err
	}

	if !opts.NoBackup {
		backupPath, err := registry.Backup(d.fs, opts.RegistryPath)
		if err == nil {
			fmt.Printf("Created backup: %s\n", backupPath)
		} else if !os.IsNotExist(err) {
			return err
		}
	}

	if reg.Upsert(rec) {
		if err := reg.Persist(); err != nil {
			return err
		}
		fmt.Printf("Updated %s\n", opts.RegistryPath)
	} else {
		warningPrinter.Printf("Source '%s' already exists in the registry, skipping...\n", sourceName)
	}

	modelPath := filepath.Join(opts.StagingDir, modelName+".sql")
	if err := d.fs.MkdirAll(opts.StagingDir, 0o755); err != nil {
		return errors2.Wrapf(err, "failed to create staging directory %s", opts.StagingDir)
	}
	if err := afero.WriteFile(d.fs, modelPath, []byte(sql), 0o644); err != nil {
		return errors2.Wrapf(err, "failed to write staging model to %s", modelPath)
	}
	fmt.Printf("Created staging model: %s\n", modelPath)

	mf, err := manifest.Load(d.fs, opts.SourcesPath)
	if err != nil {
		return err
	}
	mf.EnsureSource("raw", opts.ProjectID, opts.DatasetID)
	mf.AddTable("raw", sourceName)
	mf.AddModelCheck(modelName, checkColumns(ds.Mapping, aliases))
	if err := mf.Persist(); err != nil {
		return err
	}
	fmt.Printf("Updated %s\n", opts.SourcesPath)

	successPrinter.Println("Dataset integrated successfully!")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Printf("1. Load the raw table: dwh load --config %s\n", opts.RegistryPath)
	fmt.Printf("2. Run the transformation tool against the '%s' model\n", modelName)

	return nil
}

func (d *DatasetCommand) List(registryPath string) error {
	reg, err := registry.Load(d.fs, registryPath)
	if err != nil {
		return err
	}

	sources := reg.Sources()
	if len(sources) == 0 {
		fmt.Println("No datasets configured yet.")
		return nil
	}

	infoPrinter.Printf("Configured datasets (%d)\n", len(sources))

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Name", "Project", "Dataset", "CSV Path"})
	for _, src := range sources {
		t.AppendRow(table.Row{src.Name, src.ProjectID, src.DatasetID, src.CSVPath})
	}
	t.Render()

	return nil
}

func (d *DatasetCommand) printReport(ds *adapter.Dataset, aliases *adapter.AliasTable) {
	d.logger.Debugf("scanned %s: %d columns, %d sample rows", ds.Path, len(ds.Header), len(ds.Sample))

	infoPrinter.Println("Dataset Analysis Report")
	fmt.Printf("File:    %s\n", filepath.Base(ds.Path))
	fmt.Printf("Type:    %s\n", ds.Family)
	fmt.Printf("Columns: %d\n", len(ds.Header))
	fmt.Println()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Canonical Attribute", "Raw Column"})
	for _, attr := range aliases.Attributes() {
		if raw, ok := ds.Mapping[attr]; ok {
			t.AppendRow(table.Row{attr, raw})
		}
	}
	t.Render()
	fmt.Println()
}

// checkColumns builds the minimal column-presence check for a generated model:
// every mapped canonical attribute, with a not_null test on the identifiers.
func checkColumns(mapping adapter.ColumnMapping, aliases *adapter.AliasTable) []manifest.Column {
	columns := make([]manifest.Column, 0, len(mapping))
	for _, attr := range aliases.Attributes() {
		if _, ok := mapping[attr]; !ok {
			continue
		}

		col := manifest.Column{Name: attr}
		if attr == "loan_id" || attr == "customer_id" {
			col.Tests = []string{"not_null"}
		}
		columns = append(columns, col)
	}

	return columns
}
