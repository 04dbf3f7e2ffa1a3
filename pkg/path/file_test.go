package path

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteYamlAtomic(t *testing.T) {
	t.Parallel()

	type doc struct {
		Name  string   `yaml:"name"`
		Items []string `yaml:"items"`
	}

	t.Run("round trips through yaml", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		in := doc{Name: "loans", Items: []string{"a", "b"}}

		require.NoError(t, WriteYamlAtomic(fs, "out.yml", in))

		var out doc
		require.NoError(t, ReadYaml(fs, "out.yml", &out))
		assert.Equal(t, in, out)
	})

	t.Run("no temporary file is left behind", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		require.NoError(t, WriteYamlAtomic(fs, "out.yml", doc{Name: "x"}))

		exists, err := afero.Exists(fs, "out.yml.tmp")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("replaces an existing file completely", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "out.yml", []byte("name: old\nitems: [z]\n"), 0o644))

		require.NoError(t, WriteYamlAtomic(fs, "out.yml", doc{Name: "new"}))

		var out doc
		require.NoError(t, ReadYaml(fs, "out.yml", &out))
		assert.Equal(t, "new", out.Name)
		assert.Empty(t, out.Items)
	})
}

func TestReadYaml(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		var out struct{}
		err := ReadYaml(afero.NewMemMapFs(), "missing.yml", &out)
		require.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "bad.yml", []byte("a: [unclosed"), 0o644))

		var out struct{}
		require.Error(t, ReadYaml(fs, "bad.yml", &out))
	})
}

func TestCopyFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "src.yml", []byte("content"), 0o644))

	require.NoError(t, CopyFile(fs, "src.yml", "backups/dst.yml"))

	content, err := afero.ReadFile(fs, "backups/dst.yml")
	require.NoError(t, err)
	assert.Equal(t, "content", string(content))
}
