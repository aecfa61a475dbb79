package explore

import (
	"context"
	"time"

	"github.com/campusmatch/campusmatch/internal/app"
	"github.com/campusmatch/campusmatch/internal/db"
	"github.com/campusmatch/campusmatch/internal/repository"
)

const defaultPageSize = 20

// Service implements profile discovery and the "who liked you" surfaces.
// It contains the business logic on top of repository and cache layers.
type Service struct {
	appCtx    *app.AppContext
	swipeRepo *repository.SwipeRepository
	userRepo  *repository.UserRepository
}

// NewExploreService creates a new Explore service with dependencies from
// AppContext.
func NewExploreService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		swipeRepo: repository.NewSwipeRepository(appCtx.DB),
		userRepo:  repository.NewUserRepository(appCtx.DB),
	}
}

// Liker is one entry of a "who liked you" listing.
type Liker struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Faculty     string    `json:"faculty,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	LikedAt     time.Time `json:"liked_at"`
}

// Profile is a discovery feed card.
type Profile struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Gender      string `json:"gender"`
	Faculty     string `json:"faculty,omitempty"`
	YearOfStudy int    `json:"year_of_study,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Discover returns opposite-gender candidates the viewer has not swiped on,
// excluding blocked pairs in either direction.
func (s *Service) Discover(ctx context.Context, viewer *db.User, limit int) ([]Profile, error) {
	if limit <= 0 || limit > 50 {
		limit = defaultPageSize
	}

	users, err := s.userRepo.Discover(ctx, viewer.ID, viewer.Gender, limit)
	if err != nil {
		s.appCtx.Logger.Error("discover query failed", "viewer", viewer.ID, "err", err)
		return nil, err
	}

	profiles := make([]Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, Profile{
			UserID:      u.ID,
			DisplayName: u.DisplayName,
			Gender:      u.Gender,
			Faculty:     u.Faculty,
			YearOfStudy: u.YearOfStudy,
			AvatarURL:   u.AvatarURL,
		})
	}
	return profiles, nil
}

// ListLikedYou returns all users who liked the given recipient.
//
// Behavior:
//   - Fetches likes via repository.GetLikers, excluding users the recipient
//     explicitly passed.
//   - Supports cursor-based pagination with paginationToken.
func (s *Service) ListLikedYou(ctx context.Context, userID string, paginationToken *string) ([]Liker, *string, error) {
	s.appCtx.Logger.Debug("ListLikedYou called", "recipient", userID)

	swipes, nextToken, err := s.swipeRepo.GetLikers(ctx, userID, paginationToken, defaultPageSize)
	if err != nil {
		s.appCtx.Logger.Error("GetLikers failed", "err", err)
		return nil, nil, err
	}

	likers, err := s.hydrateLikers(ctx, swipes)
	if err != nil {
		return nil, nil, err
	}
	return likers, nextToken, nil
}

// ListNewLikedYou returns users who liked the recipient but have not been
// liked back yet.
func (s *Service) ListNewLikedYou(ctx context.Context, userID string, paginationToken *string) ([]Liker, *string, error) {
	s.appCtx.Logger.Debug("ListNewLikedYou called", "recipient", userID)

	swipes, nextToken, err := s.swipeRepo.GetNewLikers(ctx, userID, paginationToken, defaultPageSize)
	if err != nil {
		return nil, nil, err
	}

	likers, err := s.hydrateLikers(ctx, swipes)
	if err != nil {
		return nil, nil, err
	}
	return likers, nextToken, nil
}

// CountLikedYou returns how many users liked the recipient.
// Cache-first strategy:
//  1. Attempts to read from Redis (likes:count:userID).
//  2. If cache miss, falls back to DB via repository.CountLikers.
//  3. On DB fetch, updates Redis with a 1h TTL.
func (s *Service) CountLikedYou(ctx context.Context, userID string) (int64, error) {
	if n, hit, err := s.appCtx.RedisCache.GetLikeCount(ctx, userID); err == nil && hit {
		return n, nil
	}

	count, err := s.swipeRepo.CountLikers(ctx, userID)
	if err != nil {
		return 0, err
	}

	_ = s.appCtx.RedisCache.UpdateLikeCount(ctx, userID, count)
	return count, nil
}

// hydrateLikers joins swipe edges with the actors' profile fields, keeping
// the edge ordering.
func (s *Service) hydrateLikers(ctx context.Context, swipes []db.Swipe) ([]Liker, error) {
	ids := make([]string, 0, len(swipes))
	for _, sw := range swipes {
		ids = append(ids, sw.ActorID)
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]db.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	likers := make([]Liker, 0, len(swipes))
	for _, sw := range swipes {
		u, ok := byID[sw.ActorID]
		if !ok {
			continue // account deleted between queries
		}
		likers = append(likers, Liker{
			UserID:      u.ID,
			DisplayName: u.DisplayName,
			Faculty:     u.Faculty,
			AvatarURL:   u.AvatarURL,
			LikedAt:     sw.UpdatedAt,
		})
	}
	return likers, nil
}
