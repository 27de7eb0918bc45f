package sqlstore

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-warehouse/internal/rowstore"
	"github.com/fekuna/omnipos-warehouse/internal/rowstore/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLite(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), DialectSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) rowstore.Store {
		return newSQLite(t)
	})
}

func TestOpen_UnsupportedDialect(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "")
	assert.ErrorContains(t, err, "unsupported dialect")
}

func TestMigrate_IsRepeatable(t *testing.T) {
	s := newSQLite(t)
	require.NoError(t, s.Migrate(context.Background(), DialectSQLite))
}

func TestPositionsSurviveGapsInIDs(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)
	require.NoError(t, s.EnsureHeader(ctx, rowstore.Products, rowstore.Headers[rowstore.Products]))
	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		require.NoError(t, s.Append(ctx, rowstore.Products, []string{id}))
	}

	require.NoError(t, s.Delete(ctx, rowstore.Products, 3))
	require.NoError(t, s.Delete(ctx, rowstore.Products, 3))

	tbl, err := s.Read(ctx, rowstore.Products)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"p1"}, tbl.Rows[0].Values)
	assert.Equal(t, []string{"p4"}, tbl.Rows[1].Values)
	assert.Equal(t, 3, tbl.Rows[1].Index)
}
