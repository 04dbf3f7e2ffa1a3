package manifest

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifest_EnsureSource(t *testing.T) {
	t.Parallel()

	t.Run("creates the source block when missing", func(t *testing.T) {
		t.Parallel()

		m, err := Load(afero.NewMemMapFs(), "sources.yml")
		require.NoError(t, err)

		m.EnsureSource("raw", "my-project", "raw_dataset")

		require.Len(t, m.Sources(), 1)
		assert.Equal(t, "my-project", m.Sources()[0].Database)
		assert.Equal(t, "raw_dataset", m.Sources()[0].Schema)
	})

	t.Run("never overwrites a manually edited database", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		existing := `version: 2
sources:
  - name: raw
    database: hand-edited-project
    schema: hand_edited_schema
    tables:
      - name: loans_raw
`
		require.NoError(t, afero.WriteFile(fs, "sources.yml", []byte(existing), 0o644))

		m, err := Load(fs, "sources.yml")
		require.NoError(t, err)

		m.EnsureSource("raw", "different-project", "different_schema")

		require.Len(t, m.Sources(), 1)
		assert.Equal(t, "hand-edited-project", m.Sources()[0].Database)
		assert.Equal(t, "hand_edited_schema", m.Sources()[0].Schema)
	})

	t.Run("fills only the empty coordinates", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		existing := `version: 2
sources:
  - name: raw
    database: kept-project
    tables: []
`
		require.NoError(t, afero.WriteFile(fs, "sources.yml", []byte(existing), 0o644))

		m, err := Load(fs, "sources.yml")
		require.NoError(t, err)

		m.EnsureSource("raw", "other-project", "filled_schema")

		assert.Equal(t, "kept-project", m.Sources()[0].Database)
		assert.Equal(t, "filled_schema", m.Sources()[0].Schema)
	})
}

func TestManifest_AddTable(t *testing.T) {
	t.Parallel()

	t.Run("append is idempotent", func(t *testing.T) {
		t.Parallel()

		m, err := Load(afero.NewMemMapFs(), "sources.yml")
		require.NoError(t, err)

		m.EnsureSource("raw", "p", "s")
		assert.True(t, m.AddTable("raw", "loans_raw"))
		assert.False(t, m.AddTable("raw", "loans_raw"))
		assert.True(t, m.AddTable("raw", "applications_raw"))

		require.Len(t, m.Sources(), 1)
		assert.Len(t, m.Sources()[0].Tables, 2)
	})

	t.Run("unknown source gets created", func(t *testing.T) {
		t.Parallel()

		m, err := Load(afero.NewMemMapFs(), "sources.yml")
		require.NoError(t, err)

		assert.True(t, m.AddTable("raw", "loans_raw"))
		require.Len(t, m.Sources(), 1)
		assert.Equal(t, "raw", m.Sources()[0].Name)
	})
}

func TestManifest_AddModelCheck(t *testing.T) {
	t.Parallel()

	m, err := Load(afero.NewMemMapFs(), "sources.yml")
	require.NoError(t, err)

	columns := []Column{
		{Name: "customer_id", Tests: []string{"not_null"}},
		{Name: "loan_amount"},
	}

	assert.True(t, m.AddModelCheck("stg_loans", columns))
	assert.False(t, m.AddModelCheck("stg_loans", columns))
}

func TestManifest_Persist(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()

	m, err := Load(fs, "sources.yml")
	require.NoError(t, err)

	m.EnsureSource("raw", "my-project", "raw_dataset")
	m.AddTable("raw", "loans_raw")
	m.AddModelCheck("stg_loans", []Column{{Name: "customer_id", Tests: []string{"not_null"}}})
	require.NoError(t, m.Persist())

	reloaded, err := Load(fs, "sources.yml")
	require.NoError(t, err)

	require.Len(t, reloaded.Sources(), 1)
	assert.Equal(t, "my-project", reloaded.Sources()[0].Database)
	require.Len(t, reloaded.Sources()[0].Tables, 1)
	assert.Equal(t, "loans_raw", reloaded.Sources()[0].Tables[0].Name)

	content, err := afero.ReadFile(fs, "sources.yml")
	require.NoError(t, err)
	assert.Contains(t, string(content), "version: 2")
	assert.Contains(t, string(content), "not_null")
}
