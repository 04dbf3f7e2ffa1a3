package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/afero"
)

var (
	fs = afero.NewOsFs()

	infoPrinter    = color.New(color.Bold)
	errorPrinter   = color.New(color.FgRed, color.Bold)
	warningPrinter = color.New(color.FgYellow, color.Bold)
	successPrinter = color.New(color.FgGreen, color.Bold)
)

const (
	defaultRegistryPath = "config/raw_sources.yml"
	defaultSourcesPath  = "dbt/models/staging/sources.yml"
	defaultStagingDir   = "dbt/models/staging"
)
