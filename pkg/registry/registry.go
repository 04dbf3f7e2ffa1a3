package registry

import (
	"os"

	"github.com/pkg/errors"
	path2 "github.com/rytakahas/etl-demos/pkg/path"
	"github.com/samber/lo"
	"github.com/spf13/afero"
)

// Record is one ingestible raw source: where the CSV lives and which BigQuery
// table it loads into. Immutable once constructed.
type Record struct {
	Name      string `yaml:"name"`
	ProjectID string `yaml:"project_id"`
	DatasetID string `yaml:"dataset_id"`
	TableID   string `yaml:"table_id"`
	CSVPath   string `yaml:"csv_path"`
}

func NewRecord(name, projectID, datasetID, tableID, csvPath string) Record {
	return Record{
		Name:      name,
		ProjectID: projectID,
		DatasetID: datasetID,
		TableID:   tableID,
		CSVPath:   csvPath,
	}
}

type document struct {
	RawSources []Record `yaml:"raw_sources"`
}

// Registry is the on-disk list of raw sources, keyed by record name. Mutations
// go through Upsert and are only visible on disk after Persist, which replaces
// the file atomically.
type Registry struct {
	fs   afero.Fs
	path string
	doc  document
}

// Load reads the registry at path; a missing file yields an empty registry.
func Load(fs afero.Fs, path string) (*Registry, error) {
	r := &Registry{fs: fs, path: path}

	if !path2.FileExists(fs, path) {
		return r, nil
	}

	if err := path2.ReadYaml(fs, path, &r.doc); err != nil {
		return nil, errors.Wrap(err, "failed to load raw source registry")
	}

	return r, nil
}

// Upsert appends rec unless a record with the same name is already present.
// Returns whether the record was added; a duplicate is a skip, not an error.
func (r *Registry) Upsert(rec Record) bool {
	exists := lo.ContainsBy(r.doc.RawSources, func(existing Record) bool {
		return existing.Name == rec.Name
	})
	if exists {
		return false
	}

	r.doc.RawSources = append(r.doc.RawSources, rec)
	return true
}

func (r *Registry) Sources() []Record {
	return r.doc.RawSources
}

func (r *Registry) Persist() error {
	return path2.WriteYamlAtomic(r.fs, r.path, r.doc)
}

// Backup copies the registry file to <path>.backup before a mutation. A
// missing registry is fine, there is nothing to back up yet.
func Backup(fs afero.Fs, path string) (string, error) {
	if !path2.FileExists(fs, path) {
		return "", os.ErrNotExist
	}

	backupPath := path + ".backup"
	if err := path2.CopyFile(fs, path, backupPath); err != nil {
		return "", errors.Wrap(err, "failed to back up registry")
	}

	return backupPath, nil
}
