package repository

import (
	"context"
	"time"

	"github.com/campusmatch/campusmatch/internal/db"
	"github.com/campusmatch/campusmatch/internal/utils/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SwipeRepository provides data access methods for the Swipe edge table and
// the append-only SwipeEvent log. It encapsulates all queries related to
// likes/passes between users.
type SwipeRepository struct {
	db *gorm.DB
}

// NewSwipeRepository creates a new repository bound to the given DB
// connection. Bind it to a transaction handle to group writes atomically.
func NewSwipeRepository(database *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: database}
}

// CreateOrUpdateSwipe inserts or updates the directed swipe edge actor -> target.
//
// Behavior:
//   - If (actor_id, target_id) pair exists → the row is updated with the new "liked" value.
//   - If it doesn't exist → a new row is inserted.
//   - Composite PK ensures overwrite guarantee; membership in "liked" and
//     "passed" is mutually exclusive by construction, no list juggling.
func (r *SwipeRepository) CreateOrUpdateSwipe(
	ctx context.Context,
	actorID, targetID string,
	liked bool,
) error {
	swipe := db.Swipe{
		ActorID:  actorID,
		TargetID: targetID,
		Liked:    liked,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"liked", "updated_at"}),
		}).
		Create(&swipe).Error
}

// AppendEvent records the swipe in the immutable audit log. Never updated,
// never deleted; repeated swipes append new rows.
func (r *SwipeRepository) AppendEvent(
	ctx context.Context,
	actorID, targetID string,
	liked bool,
) error {
	event := db.SwipeEvent{
		ActorID:  actorID,
		TargetID: targetID,
		Liked:    liked,
	}
	return r.db.WithContext(ctx).Create(&event).Error
}

// HasLiked checks whether an actor currently likes a target.
//
// Used for the mutual-like check after recording a like: the reverse edge
// lookup is a single indexed point query.
func (r *SwipeRepository) HasLiked(
	ctx context.Context,
	actorID, targetID string,
) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("swipes s").
		Where("s.actor_id = ? AND s.target_id = ? AND s.liked = true", actorID, targetID).
		Count(&count).Error
	return count > 0, err
}

// GetLikers returns all users who like the given target.
//
// Behavior:
//   - Only edges where target_id = X and liked = true are returned.
//   - Excludes users that the target explicitly passed (liked = false).
//   - Ordered by updated_at DESC, actor_id DESC.
//   - Supports cursor-based pagination via paginationToken.
func (r *SwipeRepository) GetLikers(
	ctx context.Context,
	targetID string,
	paginationToken *string,
	limit int,
) ([]db.Swipe, *string, error) {
	var swipes []db.Swipe

	// decode cursor if provided
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Table("swipes s").
		Where("s.target_id = ? AND s.liked = true", targetID).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM swipes s2
				WHERE s2.actor_id = ?
				  AND s2.target_id = s.actor_id
				  AND s2.liked = false
			)`, targetID).
		Order("s.updated_at DESC, s.actor_id DESC").
		Limit(limit + 1)

	// apply cursor
	if cursor.UserID != "" && cursor.UpdatedUnix > 0 {
		ts := time.UnixMilli(cursor.UpdatedUnix)
		query = query.Where(
			"(s.updated_at < ? OR (s.updated_at = ? AND s.actor_id < ?))",
			ts, ts, cursor.UserID,
		)
	}

	if err := query.Find(&swipes).Error; err != nil {
		return nil, nil, err
	}

	return paginate(swipes, limit)
}

// GetNewLikers returns users who like the target but have not been liked back.
//
// Behavior:
//   - Only edges where target_id = X and liked = true are considered.
//   - Excludes mutual likes (target already liked them back).
//   - Excludes users the target explicitly passed.
//   - Ordered by updated_at DESC, actor_id DESC, cursor-paginated.
func (r *SwipeRepository) GetNewLikers(
	ctx context.Context,
	targetID string,
	paginationToken *string,
	limit int,
) ([]db.Swipe, *string, error) {
	var swipes []db.Swipe

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	// subquery to exclude mutual likes
	subQuery := r.db.
		Table("swipes").
		Select("1").
		Where("actor_id = s.target_id AND target_id = s.actor_id AND liked = true")

	query := r.db.WithContext(ctx).
		Table("swipes s").
		Where("s.target_id = ? AND s.liked = true AND NOT EXISTS (?)", targetID, subQuery).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM swipes s2
				WHERE s2.actor_id = ?
				  AND s2.target_id = s.actor_id
				  AND s2.liked = false
			)`, targetID).
		Order("s.updated_at DESC, s.actor_id DESC").
		Limit(limit + 1)

	if cursor.UserID != "" && cursor.UpdatedUnix > 0 {
		ts := time.UnixMilli(cursor.UpdatedUnix)
		query = query.Where(
			"(s.updated_at < ? OR (s.updated_at = ? AND s.actor_id < ?))",
			ts, ts, cursor.UserID,
		)
	}

	if err := query.Find(&swipes).Error; err != nil {
		return nil, nil, err
	}

	return paginate(swipes, limit)
}

// CountLikers returns how many users like the given target.
//
// Behavior:
//   - Counts only edges where target_id = X and liked = true.
//   - Excludes users that the target explicitly passed.
//   - Used in conjunction with the Redis counter (DB is fallback).
func (r *SwipeRepository) CountLikers(
	ctx context.Context,
	targetID string,
) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("swipes s").
		Where("s.target_id = ? AND s.liked = true", targetID).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM swipes s2
				WHERE s2.actor_id = ?
				  AND s2.target_id = s.actor_id
				  AND s2.liked = false
			)`, targetID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// paginate trims the +1 overfetch row and builds the next-page cursor.
func paginate(swipes []db.Swipe, limit int) ([]db.Swipe, *string, error) {
	var nextToken *string
	if len(swipes) > limit {
		last := swipes[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			UserID:      last.ActorID,
			UpdatedUnix: last.UpdatedAt.UnixMilli(),
		})
		nextToken = &token
		swipes = swipes[:limit]
	}
	return swipes, nextToken, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
