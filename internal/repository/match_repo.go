package repository

import (
	"context"

	"github.com/campusmatch/campusmatch/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MatchRepository provides data access for materialized mutual-like matches.
type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// CanonicalPair orders two user ids so the lexicographically smaller one
// comes first. Match rows always store the pair in this order, making pair
// lookups independent of which side swiped last.
func CanonicalPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// CreateIfAbsent inserts the match for the unordered pair {a, b} unless one
// already exists. Uniqueness is enforced by idx_match_pair at the storage
// layer, so two near-simultaneous reciprocal likes settle to a single row;
// the losing insert is a silent no-op and the surviving row is returned.
func (r *MatchRepository) CreateIfAbsent(ctx context.Context, a, b string) (*db.Match, bool, error) {
	userA, userB := CanonicalPair(a, b)

	match := db.Match{UserAID: userA, UserBID: userB}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_a_id"}, {Name: "user_b_id"}},
			DoNothing: true,
		}).
		Create(&match)
	if res.Error != nil {
		return nil, false, res.Error
	}

	created := res.RowsAffected > 0
	if !created {
		// lost the race or match pre-existed; fetch the canonical row
		existing, err := r.GetByPair(ctx, userA, userB)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	return &match, true, nil
}

// GetByID fetches a match by its id.
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*db.Match, error) {
	var match db.Match
	err := r.db.WithContext(ctx).First(&match, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// GetByPair fetches the match for an unordered pair, canonicalizing first.
func (r *MatchRepository) GetByPair(ctx context.Context, a, b string) (*db.Match, error) {
	userA, userB := CanonicalPair(a, b)
	var match db.Match
	err := r.db.WithContext(ctx).
		First(&match, "user_a_id = ? AND user_b_id = ?", userA, userB).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// ListForUser returns all matches the user participates in, newest first.
func (r *MatchRepository) ListForUser(ctx context.Context, userID string) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&matches).Error
	return matches, err
}
