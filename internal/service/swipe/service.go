package swipe

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/campusmatch/campusmatch/internal/app"
	"github.com/campusmatch/campusmatch/internal/db"
	svcErr "github.com/campusmatch/campusmatch/internal/errors"
	"github.com/campusmatch/campusmatch/internal/realtime"
	"github.com/campusmatch/campusmatch/internal/repository"
)

// Service implements the swipe -> match pipeline: recording like/pass edges,
// detecting mutual likes and materializing match rows.
type Service struct {
	appCtx *app.AppContext
	hub    *realtime.Hub

	userRepo  *repository.UserRepository
	blockRepo *repository.BlockRepository
}

func NewSwipeService(appCtx *app.AppContext, hub *realtime.Hub) *Service {
	return &Service{
		appCtx:    appCtx,
		hub:       hub,
		userRepo:  repository.NewUserRepository(appCtx.DB),
		blockRepo: repository.NewBlockRepository(appCtx.DB),
	}
}

// Result of a swipe. Match is set whenever the pair is mutually liked;
// NewMatch is true only for the swipe that actually created the row, so
// repeated likes never re-announce an existing match.
type Result struct {
	IsMatch  bool
	NewMatch bool
	Match    *db.Match
}

// PutSwipe records actor's like/pass on target and checks for a mutual like.
//
// The swipe upsert, the audit event and the conditional match insert run in
// one transaction: a failure partway leaves no partial state. Match
// uniqueness is enforced by the storage-level unique pair index, so two
// near-simultaneous reciprocal likes settle to exactly one match row.
func (s *Service) PutSwipe(ctx context.Context, actor *db.User, targetID string, liked bool) (*Result, error) {
	if targetID == "" {
		return nil, svcErr.InvalidArgument("swiped_id is required")
	}
	if actor.ID == targetID {
		return nil, svcErr.ErrSelfSwipe
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.ErrUserNotFound
		}
		return nil, err
	}

	if blocked, err := s.blockRepo.IsBlockedEither(ctx, actor.ID, targetID); err != nil {
		return nil, err
	} else if blocked {
		return nil, svcErr.ErrBlocked
	}

	res := &Result{}
	err = s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		swipes := repository.NewSwipeRepository(tx)

		if err := swipes.CreateOrUpdateSwipe(ctx, actor.ID, targetID, liked); err != nil {
			return err
		}
		if err := swipes.AppendEvent(ctx, actor.ID, targetID, liked); err != nil {
			return err
		}

		if !liked {
			return nil
		}

		// mutual like check: single indexed reverse-edge lookup
		mutual, err := swipes.HasLiked(ctx, targetID, actor.ID)
		if err != nil {
			return err
		}
		if !mutual {
			return nil
		}

		matches := repository.NewMatchRepository(tx)
		match, created, err := matches.CreateIfAbsent(ctx, actor.ID, targetID)
		if err != nil {
			return err
		}
		res.IsMatch = true
		res.NewMatch = created
		res.Match = match
		return nil
	})
	if err != nil {
		s.appCtx.Logger.Error("swipe transaction failed",
			"actor", actor.ID, "target", targetID, "err", err)
		return nil, err
	}

	s.updateLikeCounter(ctx, targetID, liked)

	if res.NewMatch {
		s.appCtx.Logger.Info("match created",
			"match_id", res.Match.ID, "user_a", res.Match.UserAID, "user_b", res.Match.UserBID)
		s.announceMatch(res.Match, actor, target)
	}

	return res, nil
}

// updateLikeCounter keeps the cached incoming-like count warm. Best effort:
// on a miss the next CountLikedYou repopulates from the DB.
func (s *Service) updateLikeCounter(ctx context.Context, targetID string, liked bool) {
	key := s.appCtx.RedisCache.KeyForLikeCount(targetID)
	if liked {
		_, _ = s.appCtx.RedisCache.Incr(ctx, key)
	} else {
		_, _ = s.appCtx.RedisCache.Decr(ctx, key)
	}
	_ = s.appCtx.RedisCache.Client.Expire(ctx, key, time.Hour).Err()
}

// announceMatch pushes a celebratory frame to each participant that is
// online. Offline participants discover the match on their next matches
// fetch.
func (s *Service) announceMatch(match *db.Match, actor, target *db.User) {
	s.hub.SendToUser(actor.ID, realtime.Frame{
		Type: realtime.TypeMatch,
		Match: &realtime.MatchPayload{
			MatchID:     match.ID,
			UserID:      target.ID,
			DisplayName: target.DisplayName,
			AvatarURL:   target.AvatarURL,
			CreatedAt:   match.CreatedAt,
		},
	})
	s.hub.SendToUser(target.ID, realtime.Frame{
		Type: realtime.TypeMatch,
		Match: &realtime.MatchPayload{
			MatchID:     match.ID,
			UserID:      actor.ID,
			DisplayName: actor.DisplayName,
			AvatarURL:   actor.AvatarURL,
			CreatedAt:   match.CreatedAt,
		},
	})
}

// Block records a block edge and is terminal for the pair: they disappear
// from each other's discovery and can no longer message.
func (s *Service) Block(ctx context.Context, actor *db.User, blockedID string) error {
	if blockedID == "" {
		return svcErr.InvalidArgument("blocked_id is required")
	}
	if actor.ID == blockedID {
		return svcErr.InvalidArgument("cannot block yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, blockedID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return svcErr.ErrUserNotFound
		}
		return err
	}
	return s.blockRepo.Create(ctx, actor.ID, blockedID)
}
