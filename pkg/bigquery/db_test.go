package bigquery

import (
	"context"
	"testing"

	"github.com/rytakahas/etl-demos/pkg/adapter"
	"github.com/rytakahas/etl-demos/pkg/registry"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestClient_LoadCSV_MissingFile(t *testing.T) {
	t.Parallel()

	c := &Client{fs: afero.NewMemMapFs()}
	rec := registry.NewRecord("loans_raw", "p", "d", "loans_raw", "/data/loans.csv")

	err := c.LoadCSV(context.Background(), rec, false)
	require.ErrorIs(t, err, adapter.ErrMissingFile)
}
