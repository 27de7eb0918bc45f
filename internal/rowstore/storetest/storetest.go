// Package storetest holds the behaviour every rowstore.Store must share.
package storetest

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-warehouse/internal/rowstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Run(t *testing.T, newStore func(t *testing.T) rowstore.Store) {
	t.Run("EmptyCollection", func(t *testing.T) {
		s := newStore(t)
		tbl, err := s.Read(context.Background(), rowstore.Categories)
		require.NoError(t, err)
		assert.Empty(t, tbl.Header)
		assert.Empty(t, tbl.Rows)
	})

	t.Run("EnsureHeaderIsIdempotent", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.EnsureHeader(ctx, rowstore.Phones, rowstore.Headers[rowstore.Phones]))
		require.NoError(t, s.EnsureHeader(ctx, rowstore.Phones, []string{"other"}))

		tbl, err := s.Read(ctx, rowstore.Phones)
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "typeId", "name"}, tbl.Header)
		assert.Empty(t, tbl.Rows)
	})

	t.Run("AppendAssignsPositionsAfterHeader", func(t *testing.T) {
		ctx := context.Background()
		s := seeded(t, newStore(t), "a", "b", "c")

		tbl, err := s.Read(ctx, rowstore.Categories)
		require.NoError(t, err)
		require.Len(t, tbl.Rows, 3)
		assert.Equal(t, 2, tbl.Rows[0].Index)
		assert.Equal(t, []string{"a", "name-a"}, tbl.Rows[0].Values)
		assert.Equal(t, 4, tbl.Rows[2].Index)
	})

	t.Run("DeleteShiftsLaterRows", func(t *testing.T) {
		ctx := context.Background()
		s := seeded(t, newStore(t), "a", "b", "c")

		require.NoError(t, s.Delete(ctx, rowstore.Categories, 2))

		tbl, err := s.Read(ctx, rowstore.Categories)
		require.NoError(t, err)
		require.Len(t, tbl.Rows, 2)
		assert.Equal(t, "b", tbl.Rows[0].Values[0])
		assert.Equal(t, 2, tbl.Rows[0].Index)
		assert.Equal(t, "c", tbl.Rows[1].Values[0])
		assert.Equal(t, 3, tbl.Rows[1].Index)
	})

	t.Run("UpdateReplacesRow", func(t *testing.T) {
		ctx := context.Background()
		s := seeded(t, newStore(t), "a", "b")

		require.NoError(t, s.Update(ctx, rowstore.Categories, 3, []string{"b", "renamed"}))

		tbl, err := s.Read(ctx, rowstore.Categories)
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "renamed"}, tbl.Rows[1].Values)
		assert.Equal(t, []string{"a", "name-a"}, tbl.Rows[0].Values)
	})

	t.Run("OutOfRangePositions", func(t *testing.T) {
		ctx := context.Background()
		s := seeded(t, newStore(t), "a")

		assert.ErrorIs(t, s.Delete(ctx, rowstore.Categories, 1), rowstore.ErrRowNotFound)
		assert.ErrorIs(t, s.Delete(ctx, rowstore.Categories, 3), rowstore.ErrRowNotFound)
		assert.ErrorIs(t, s.Update(ctx, rowstore.Categories, 0, []string{"x"}), rowstore.ErrRowNotFound)
	})

	t.Run("CollectionsAreIsolated", func(t *testing.T) {
		ctx := context.Background()
		s := seeded(t, newStore(t), "a")
		require.NoError(t, s.EnsureHeader(ctx, rowstore.Types, rowstore.Headers[rowstore.Types]))
		require.NoError(t, s.Append(ctx, rowstore.Types, []string{"t1", "Case"}))

		cats, err := s.Read(ctx, rowstore.Categories)
		require.NoError(t, err)
		types, err := s.Read(ctx, rowstore.Types)
		require.NoError(t, err)
		assert.Len(t, cats.Rows, 1)
		require.Len(t, types.Rows, 1)
		assert.Equal(t, 2, types.Rows[0].Index)
	})

	t.Run("UnknownCollection", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Read(context.Background(), rowstore.Collection("orders"))
		assert.ErrorIs(t, err, rowstore.ErrUnknownCollection)
	})
}

func seeded(t *testing.T, s rowstore.Store, ids ...string) rowstore.Store {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.EnsureHeader(ctx, rowstore.Categories, rowstore.Headers[rowstore.Categories]))
	for _, id := range ids {
		require.NoError(t, s.Append(ctx, rowstore.Categories, []string{id, "name-" + id}))
	}
	return s
}
