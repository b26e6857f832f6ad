package repository

import (
	"errors"
	"fmt"
	"testing"

	"catalog-service/internal/catalog"
	"catalog-service/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	t.Run("TranslateError_Nil", func(t *testing.T) {
		require.NoError(t, translateError(nil))
	})

	t.Run("TranslateError_RecordNotFound", func(t *testing.T) {
		err := translateError(gorm.ErrRecordNotFound)
		require.ErrorIs(t, err, catalog.ErrNotFound)
	})

	t.Run("TranslateError_UniqueViolation", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505", ConstraintName: catalog.ConstraintVariantSKU}
		err := translateError(fmt.Errorf("insert failed: %w", pgErr))

		var unique *catalog.UniqueViolationError
		require.ErrorAs(t, err, &unique)
		require.Equal(t, catalog.ConstraintVariantSKU, unique.Constraint)
		require.ErrorIs(t, err, pgErr)
		require.True(t, catalog.IsConflict(err))
	})

	t.Run("TranslateError_OtherPgErrorPassesThrough", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "40001"}
		err := translateError(pgErr)
		require.Same(t, pgErr, err)
	})

	t.Run("TranslateError_PlainError", func(t *testing.T) {
		plain := errors.New("connection refused")
		require.Equal(t, plain, translateError(plain))
	})
}

func TestCounterModel(t *testing.T) {
	for kind, want := range map[model.CounterKind]interface{}{
		model.CounterCategory: &model.Category{},
		model.CounterBrand:    &model.Brand{},
		model.CounterSize:     &model.Size{},
		model.CounterColor:    &model.Color{},
	} {
		got, err := counterModel(kind)
		require.NoError(t, err)
		require.IsType(t, want, got)
	}
	_, err := counterModel("shelf")
	require.Error(t, err)
}

func TestUniqueIDs(t *testing.T) {
	require.Equal(t, []uint{3, 1}, uniqueIDs([]uint{3, 0, 1, 3, 1}))
	require.Empty(t, uniqueIDs(nil))
}

func TestNewStore(t *testing.T) {
	store, err := NewStore("memory", nil)
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, store)

	_, err = NewStore("postgres", nil)
	require.Error(t, err)

	_, err = NewStore("cassandra", nil)
	require.Error(t, err)
}
