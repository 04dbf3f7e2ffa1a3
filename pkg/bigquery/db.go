package bigquery

import (
	"context"

	"cloud.google.com/go/bigquery"
	"github.com/pkg/errors"
	"github.com/rytakahas/etl-demos/pkg/adapter"
	"github.com/rytakahas/etl-demos/pkg/registry"
	"github.com/spf13/afero"
	"google.golang.org/api/option"
)

type Config struct {
	ProjectID           string
	CredentialsFilePath string
	Location            string
}

// Client loads registered CSV sources into their BigQuery destination tables.
type Client struct {
	client *bigquery.Client
	config *Config
	fs     afero.Fs
}

func NewClient(ctx context.Context, c *Config, fs afero.Fs) (*Client, error) {
	options := []option.ClientOption{
		option.WithScopes(bigquery.Scope),
	}
	if c.CredentialsFilePath != "" {
		options = append(options, option.WithCredentialsFile(c.CredentialsFilePath))
	}

	client, err := bigquery.NewClient(ctx, c.ProjectID, options...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create bigquery client")
	}
	if c.Location != "" {
		client.Location = c.Location
	}

	return &Client{client: client, config: c, fs: fs}, nil
}

// LoadCSV runs a truncate-and-replace load job for one registered source. The
// table schema is autodetected from the file; the header row is skipped. When
// sanitizeHeader is set the file is first rewritten with `.` replaced by `_`
// in the header, since BigQuery rejects dotted column names.
func (c *Client) LoadCSV(ctx context.Context, rec registry.Record, sanitizeHeader bool) error {
	csvPath := rec.CSVPath

	exists, err := afero.Exists(c.fs, csvPath)
	if err != nil {
		return errors.Wrapf(err, "failed to check CSV path %s", csvPath)
	}
	if !exists {
		return errors.Wrapf(adapter.ErrMissingFile, "path %s", csvPath)
	}

	if sanitizeHeader {
		csvPath, err = adapter.SanitizeHeader(c.fs, csvPath)
		if err != nil {
			return errors.Wrapf(err, "failed to sanitize header of %s", rec.CSVPath)
		}
		defer func() { _ = c.fs.Remove(csvPath) }()
	}

	f, err := c.fs.Open(csvPath)
	if err != nil {
		return errors.Wrapf(err, "failed to open CSV file %s", csvPath)
	}
	defer f.Close()

	source := bigquery.NewReaderSource(f)
	source.SourceFormat = bigquery.CSV
	source.SkipLeadingRows = 1
	source.AutoDetect = true

	loader := c.client.Dataset(rec.DatasetID).Table(rec.TableID).LoaderFrom(source)
	loader.WriteDisposition = bigquery.WriteTruncate

	job, err := loader.Run(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to start load job for %s", rec.Name)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to wait for load job for %s", rec.Name)
	}
	if status.Err() != nil {
		return errors.Wrapf(status.Err(), "load job for %s failed", rec.Name)
	}

	return nil
}
