package repository_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/campusmatch/campusmatch/internal/db"
	"github.com/campusmatch/campusmatch/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalPair(t *testing.T) {
	a, b := repository.CanonicalPair("user-b", "user-a")
	assert.Equal(t, "user-a", a)
	assert.Equal(t, "user-b", b)

	a, b = repository.CanonicalPair("user-a", "user-b")
	assert.Equal(t, "user-a", a)
	assert.Equal(t, "user-b", b)
}

func TestCreateIfAbsentDedup(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	first, created, err := repo.CreateIfAbsent(ctx, "user-b", "user-a")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "user-a", first.UserAID)
	assert.Equal(t, "user-b", first.UserBID)

	// same pair, opposite argument order → no second row
	second, created, err := repo.CreateIfAbsent(ctx, "user-a", "user-b")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, dbase.Model(&db.Match{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// TestCreateIfAbsentConcurrent races several inserts for the same unordered
// pair. The unique pair index must let exactly one through; everyone else
// gets the surviving row.
func TestCreateIfAbsentConcurrent(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // sqlite allows a single writer

	repo := repository.NewMatchRepository(dbase)

	const workers = 8
	var (
		wg      sync.WaitGroup
		created atomic.Int32
		errs    = make(chan error, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := "user-a", "user-b"
			if i%2 == 1 {
				a, b = b, a // half the workers submit the pair reversed
			}
			_, isNew, err := repo.CreateIfAbsent(ctx, a, b)
			if err != nil {
				errs <- err
				return
			}
			if isNew {
				created.Add(1)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("CreateIfAbsent failed: %v", err)
	}

	assert.Equal(t, int32(1), created.Load())

	var matches []db.Match
	require.NoError(t, dbase.Find(&matches).Error)
	require.Len(t, matches, 1)
	assert.Equal(t, "user-a", matches[0].UserAID)
	assert.Equal(t, "user-b", matches[0].UserBID)
}

func TestGetByPairCanonicalizes(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	created, _, err := repo.CreateIfAbsent(ctx, "user-a", "user-b")
	require.NoError(t, err)

	// lookup works regardless of argument order
	got, err := repo.GetByPair(ctx, "user-b", "user-a")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestListForUser(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	_, _, err := repo.CreateIfAbsent(ctx, "user-a", "user-b")
	require.NoError(t, err)
	_, _, err = repo.CreateIfAbsent(ctx, "user-c", "user-a")
	require.NoError(t, err)
	_, _, err = repo.CreateIfAbsent(ctx, "user-b", "user-c")
	require.NoError(t, err)

	matches, err := repo.ListForUser(ctx, "user-a")
	require.NoError(t, err)
	assert.Len(t, matches, 2)
	for _, m := range matches {
		assert.True(t, m.HasUser("user-a"))
	}
}
