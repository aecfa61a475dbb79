package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/campusmatch/campusmatch/internal/db"
	"github.com/campusmatch/campusmatch/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func TestCreateOrUpdateSwipe(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewSwipeRepository(dbase)

	// insert like
	err := repo.CreateOrUpdateSwipe(ctx, "user-a", "user-b", true)
	assert.NoError(t, err)

	// overwrite with pass
	err = repo.CreateOrUpdateSwipe(ctx, "user-a", "user-b", false)
	assert.NoError(t, err)

	var swipes []db.Swipe
	require.NoError(t, dbase.Find(&swipes).Error)
	require.Len(t, swipes, 1) // single row per directed pair
	assert.False(t, swipes[0].Liked)
}

func TestAppendEventIsAppendOnly(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewSwipeRepository(dbase)

	require.NoError(t, repo.AppendEvent(ctx, "user-a", "user-b", true))
	require.NoError(t, repo.AppendEvent(ctx, "user-a", "user-b", false))
	require.NoError(t, repo.AppendEvent(ctx, "user-a", "user-b", true))

	var count int64
	require.NoError(t, dbase.Model(&db.SwipeEvent{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestHasLiked(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewSwipeRepository(dbase)

	require.NoError(t, repo.CreateOrUpdateSwipe(ctx, "user-a", "user-b", true))

	liked, err := repo.HasLiked(ctx, "user-a", "user-b")
	require.NoError(t, err)
	assert.True(t, liked)

	// reverse edge does not exist
	liked, err = repo.HasLiked(ctx, "user-b", "user-a")
	require.NoError(t, err)
	assert.False(t, liked)

	// a pass overwrites the like
	require.NoError(t, repo.CreateOrUpdateSwipe(ctx, "user-a", "user-b", false))
	liked, err = repo.HasLiked(ctx, "user-a", "user-b")
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestGetLikersExcludesPassed(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewSwipeRepository(dbase)

	// user-a and user-b liked user-z
	_ = repo.CreateOrUpdateSwipe(ctx, "user-a", "user-z", true)
	_ = repo.CreateOrUpdateSwipe(ctx, "user-b", "user-z", true)
	// user-z passed user-b → exclude
	_ = repo.CreateOrUpdateSwipe(ctx, "user-z", "user-b", false)

	swipes, _, err := repo.GetLikers(ctx, "user-z", nil, 10)
	assert.NoError(t, err)
	assert.Len(t, swipes, 1)
	assert.Equal(t, "user-a", swipes[0].ActorID)
}

func TestGetLikersPagination(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewSwipeRepository(dbase)

	actors := []string{"user-a", "user-b", "user-c"}
	for i, actor := range actors {
		// distinct updated_at so the cursor ordering is deterministic
		sw := db.Swipe{
			ActorID:   actor,
			TargetID:  "user-z",
			Liked:     true,
			UpdatedAt: time.Now().Add(time.Duration(i) * time.Minute).UTC().Truncate(time.Millisecond),
		}
		require.NoError(t, dbase.Create(&sw).Error)
	}

	// page 1: newest two
	page1, next, err := repo.GetLikers(ctx, "user-z", nil, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotNil(t, next)
	assert.Equal(t, "user-c", page1[0].ActorID)
	assert.Equal(t, "user-b", page1[1].ActorID)

	// page 2: the remainder, no further token
	page2, next2, err := repo.GetLikers(ctx, "user-z", next, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "user-a", page2[0].ActorID)
	assert.Nil(t, next2)
}

func TestGetNewLikersExcludesMutual(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewSwipeRepository(dbase)

	// user-a liked user-z, and user-z liked back → mutual
	_ = repo.CreateOrUpdateSwipe(ctx, "user-a", "user-z", true)
	_ = repo.CreateOrUpdateSwipe(ctx, "user-z", "user-a", true)

	// user-b liked user-z, not mutual
	_ = repo.CreateOrUpdateSwipe(ctx, "user-b", "user-z", true)

	swipes, _, err := repo.GetNewLikers(ctx, "user-z", nil, 10)
	assert.NoError(t, err)
	assert.Len(t, swipes, 1)
	assert.Equal(t, "user-b", swipes[0].ActorID)
}

func TestCountLikers(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewSwipeRepository(dbase)

	_ = repo.CreateOrUpdateSwipe(ctx, "user-a", "user-z", true)
	_ = repo.CreateOrUpdateSwipe(ctx, "user-b", "user-z", true)
	_ = repo.CreateOrUpdateSwipe(ctx, "user-c", "user-z", false)
	_ = repo.CreateOrUpdateSwipe(ctx, "user-z", "user-b", false)

	count, err := repo.CountLikers(ctx, "user-z")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
