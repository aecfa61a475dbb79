package repository

import (
	"context"

	"github.com/campusmatch/campusmatch/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlockRepository provides data access for directed block edges.
type BlockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(database *gorm.DB) *BlockRepository {
	return &BlockRepository{db: database}
}

// Create records blocker -> blocked. Re-blocking is a no-op.
func (r *BlockRepository) Create(ctx context.Context, blockerID, blockedID string) error {
	block := db.Block{BlockerID: blockerID, BlockedID: blockedID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&block).Error
}

// IsBlockedEither reports whether either user has blocked the other.
func (r *BlockRepository) IsBlockedEither(ctx context.Context, a, b string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)",
			a, b, b, a).
		Count(&count).Error
	return count > 0, err
}
