package sqlite_test

import (
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/gregify/internal/domain/entity"
	"github.com/bnema/gregify/internal/infrastructure/persistence/sqlite"
)

func TestLazyDB_NotInitializedByDefault(t *testing.T) {
	lazy := sqlite.NewLazyDB(filepath.Join(t.TempDir(), "usage.sqlite"))
	assert.False(t, lazy.IsInitialized())
	assert.NoError(t, lazy.Close(), "closing before init is a no-op")
}

func TestLazyDB_ConcurrentAccessSharesConnection(t *testing.T) {
	ctx := testCtx()
	lazy := sqlite.NewLazyDB(filepath.Join(t.TempDir(), "usage.sqlite"))
	t.Cleanup(func() { _ = lazy.Close() })

	const goroutines = 8
	var wg sync.WaitGroup
	dbs := make(chan *sql.DB, goroutines)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			db, err := lazy.DB(ctx)
			assert.NoError(t, err)
			dbs <- db
		}()
	}
	wg.Wait()
	close(dbs)

	var first *sql.DB
	for db := range dbs {
		require.NotNil(t, db)
		if first == nil {
			first = db
			continue
		}
		assert.Same(t, first, db)
	}
	assert.True(t, lazy.IsInitialized())
}

func TestLazyDB_InitFailureIsSticky(t *testing.T) {
	lazy := sqlite.NewLazyDB("")

	_, err := lazy.DB(testCtx())
	require.Error(t, err)
	_, err = lazy.DB(testCtx())
	require.Error(t, err)
	assert.False(t, lazy.IsInitialized())
}

func TestLazyUsageRepository_OpensOnFirstRecord(t *testing.T) {
	ctx := testCtx()
	lazy := sqlite.NewLazyDB(filepath.Join(t.TempDir(), "usage.sqlite"))
	t.Cleanup(func() { _ = lazy.Close() })

	repo := sqlite.NewLazyUsageRepository(lazy)
	assert.False(t, lazy.IsInitialized())

	require.NoError(t, repo.Record(ctx, &entity.UsageRecord{Kind: entity.UsageSuggestion, Fingerprint: "abc"}))
	assert.True(t, lazy.IsInitialized())

	recent, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "abc", recent[0].Fingerprint)
}
