package manifest

import (
	"github.com/pkg/errors"
	path2 "github.com/rytakahas/etl-demos/pkg/path"
	"github.com/samber/lo"
	"github.com/spf13/afero"
)

// The manifest is the dbt-style sources file: which warehouse tables are
// readable as sources, plus minimal column checks for generated models.

type Table struct {
	Name string `yaml:"name"`
}

type Source struct {
	Name     string  `yaml:"name"`
	Database string  `yaml:"database,omitempty"`
	Schema   string  `yaml:"schema,omitempty"`
	Tables   []Table `yaml:"tables"`
}

type Column struct {
	Name  string   `yaml:"name"`
	Tests []string `yaml:"tests,omitempty"`
}

type Model struct {
	Name    string   `yaml:"name"`
	Columns []Column `yaml:"columns"`
}

type document struct {
	Version int      `yaml:"version"`
	Sources []Source `yaml:"sources"`
	Models  []Model  `yaml:"models,omitempty"`
}

type Manifest struct {
	fs   afero.Fs
	path string
	doc  document
}

// Load reads the manifest at path; a missing file yields an empty version-2
// document.
func Load(fs afero.Fs, path string) (*Manifest, error) {
	m := &Manifest{fs: fs, path: path, doc: document{Version: 2}}

	if !path2.FileExists(fs, path) {
		return m, nil
	}

	if err := path2.ReadYaml(fs, path, &m.doc); err != nil {
		return nil, errors.Wrap(err, "failed to load source manifest")
	}
	if m.doc.Version == 0 {
		m.doc.Version = 2
	}

	return m, nil
}

// EnsureSource guarantees a single source block with the given name exists.
// Connection coordinates are only filled in when empty; a manually edited
// database or schema value is never overwritten.
func (m *Manifest) EnsureSource(name, database, schema string) {
	for i := range m.doc.Sources {
		src := &m.doc.Sources[i]
		if src.Name != name {
			continue
		}

		if src.Database == "" {
			src.Database = database
		}
		if src.Schema == "" {
			src.Schema = schema
		}
		return
	}

	m.doc.Sources = append(m.doc.Sources, Source{
		Name:     name,
		Database: database,
		Schema:   schema,
	})
}

// AddTable appends the table to the named source's table list if it is not
// already there. Returns whether the table was added.
func (m *Manifest) AddTable(sourceName, tableName string) bool {
	for i := range m.doc.Sources {
		src := &m.doc.Sources[i]
		if src.Name != sourceName {
			continue
		}

		exists := lo.ContainsBy(src.Tables, func(t Table) bool {
			return t.Name == tableName
		})
		if exists {
			return false
		}

		src.Tables = append(src.Tables, Table{Name: tableName})
		return true
	}

	m.doc.Sources = append(m.doc.Sources, Source{
		Name:   sourceName,
		Tables: []Table{{Name: tableName}},
	})
	return true
}

// AddModelCheck registers a minimal column-presence check entry for a
// generated model, unless one already exists. Returns whether it was added.
func (m *Manifest) AddModelCheck(modelName string, columns []Column) bool {
	exists := lo.ContainsBy(m.doc.Models, func(model Model) bool {
		return model.Name == modelName
	})
	if exists {
		return false
	}

	m.doc.Models = append(m.doc.Models, Model{Name: modelName, Columns: columns})
	return true
}

func (m *Manifest) Sources() []Source {
	return m.doc.Sources
}

func (m *Manifest) Persist() error {
	return path2.WriteYamlAtomic(m.fs, m.path, m.doc)
}
