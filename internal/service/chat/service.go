package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/campusmatch/campusmatch/internal/app"
	"github.com/campusmatch/campusmatch/internal/db"
	svcErr "github.com/campusmatch/campusmatch/internal/errors"
	"github.com/campusmatch/campusmatch/internal/realtime"
	"github.com/campusmatch/campusmatch/internal/repository"
)

const maxMessageLen = 4000

// Service implements chat on top of matches: message persistence, live
// relay, history with read receipts, and the matches listing.
type Service struct {
	appCtx *app.AppContext
	hub    *realtime.Hub

	matchRepo   *repository.MatchRepository
	messageRepo *repository.MessageRepository
	userRepo    *repository.UserRepository
	blockRepo   *repository.BlockRepository
}

func NewChatService(appCtx *app.AppContext, hub *realtime.Hub) *Service {
	return &Service{
		appCtx:      appCtx,
		hub:         hub,
		matchRepo:   repository.NewMatchRepository(appCtx.DB),
		messageRepo: repository.NewMessageRepository(appCtx.DB),
		userRepo:    repository.NewUserRepository(appCtx.DB),
		blockRepo:   repository.NewBlockRepository(appCtx.DB),
	}
}

// HistoryEntry is one message of a conversation, annotated with the sender
// display name.
type HistoryEntry struct {
	ID         string     `json:"id"`
	MatchID    string     `json:"match_id"`
	SenderID   string     `json:"sender_id"`
	SenderName string     `json:"sender_name"`
	Content    string     `json:"content"`
	Read       bool       `json:"read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// MatchSummary is one row of the matches listing: the counterpart's profile
// plus conversation state.
type MatchSummary struct {
	MatchID     string    `json:"match_id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Faculty     string    `json:"faculty,omitempty"`
	YearOfStudy int       `json:"year_of_study,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	MatchedAt   time.Time `json:"matched_at"`
	Unread      int64     `json:"unread"`
	Online      bool      `json:"online"`
}

// participantMatch loads the match and verifies userID is one of its two
// participants.
func (s *Service) participantMatch(ctx context.Context, matchID, userID string) (*db.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.ErrMatchNotFound
		}
		return nil, err
	}
	if !match.HasUser(userID) {
		return nil, svcErr.ErrNotParticipant
	}
	return match, nil
}

// SendMessage persists a message and relays it to the recipient if online.
//
// Persist-first: the message is durable before any relay attempt, so an
// offline or flaky recipient never loses it; they catch up on the next
// history fetch. Live delivery itself is at-most-once.
func (s *Service) SendMessage(ctx context.Context, senderID, matchID, content string) (*db.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, svcErr.ErrEmptyMessage
	}
	if len(content) > maxMessageLen {
		return nil, svcErr.InvalidArgument("message too long")
	}

	match, err := s.participantMatch(ctx, matchID, senderID)
	if err != nil {
		return nil, err
	}
	recipientID := match.OtherUser(senderID)

	if blocked, err := s.blockRepo.IsBlockedEither(ctx, senderID, recipientID); err != nil {
		return nil, err
	} else if blocked {
		return nil, svcErr.ErrBlocked
	}

	msg := &db.Message{
		MatchID:  matchID,
		SenderID: senderID,
		Content:  content,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		s.appCtx.Logger.Error("failed to persist message",
			"match_id", matchID, "sender", senderID, "err", err)
		return nil, err
	}

	delivered := s.hub.SendToUser(recipientID, realtime.Frame{
		Type:    realtime.TypeNewMessage,
		Message: payload(msg),
	})
	s.appCtx.Logger.Debug("message sent",
		"match_id", matchID, "sender", senderID, "delivered_live", delivered)

	return msg, nil
}

// History returns the conversation in chronological order and, as a side
// effect, marks all unread counterparty messages as read. The fetcher's own
// messages are never flipped. If anything changed and the counterparty is
// online, they get a messages_read push so their UI can update receipts.
func (s *Service) History(ctx context.Context, requesterID, matchID string) ([]HistoryEntry, error) {
	match, err := s.participantMatch(ctx, matchID, requesterID)
	if err != nil {
		return nil, err
	}

	rows, err := s.messageRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	flipped, err := s.messageRepo.MarkRead(ctx, matchID, requesterID)
	if err != nil {
		return nil, err
	}
	if flipped > 0 {
		s.hub.SendToUser(match.OtherUser(requesterID), realtime.Frame{
			Type:    realtime.TypeMessagesRead,
			MatchID: matchID,
			UserID:  requesterID,
		})
	}

	flippedAt := time.Now()
	entries := make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		read := row.Read
		readAt := row.ReadAt
		// reflect the flip we just performed without a second query
		if flipped > 0 && row.SenderID != requesterID && !read {
			read = true
			readAt = &flippedAt
		}
		entries = append(entries, HistoryEntry{
			ID:         row.ID,
			MatchID:    row.MatchID,
			SenderID:   row.SenderID,
			SenderName: row.SenderName,
			Content:    row.Content,
			Read:       read,
			ReadAt:     readAt,
			CreatedAt:  row.CreatedAt,
		})
	}
	return entries, nil
}

// MarkRead flips unread counterparty messages without fetching history
// (websocket mark_read frame). Notifies the counterparty when anything
// changed.
func (s *Service) MarkRead(ctx context.Context, requesterID, matchID string) error {
	match, err := s.participantMatch(ctx, matchID, requesterID)
	if err != nil {
		return err
	}

	flipped, err := s.messageRepo.MarkRead(ctx, matchID, requesterID)
	if err != nil {
		return err
	}
	if flipped > 0 {
		s.hub.SendToUser(match.OtherUser(requesterID), realtime.Frame{
			Type:    realtime.TypeMessagesRead,
			MatchID: matchID,
			UserID:  requesterID,
		})
	}
	return nil
}

// Typing relays an ephemeral typing indicator. Nothing is persisted.
func (s *Service) Typing(ctx context.Context, senderID, matchID string, isTyping bool) error {
	match, err := s.participantMatch(ctx, matchID, senderID)
	if err != nil {
		return err
	}
	s.hub.SendToUser(match.OtherUser(senderID), realtime.Frame{
		Type:     realtime.TypeTyping,
		MatchID:  matchID,
		UserID:   senderID,
		IsTyping: isTyping,
	})
	return nil
}

// ListMatches returns counterpart summaries for all of the user's matches,
// newest first, with unread counts and presence flags.
func (s *Service) ListMatches(ctx context.Context, userID string) ([]MatchSummary, error) {
	matches, err := s.matchRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.OtherUser(userID))
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]db.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	summaries := make([]MatchSummary, 0, len(matches))
	for _, m := range matches {
		otherID := m.OtherUser(userID)
		other, ok := byID[otherID]
		if !ok {
			continue // counterpart deleted, cascade pending
		}

		unread, err := s.messageRepo.CountUnread(ctx, m.ID, userID)
		if err != nil {
			return nil, err
		}

		online := s.hub.IsOnline(otherID)
		if !online {
			// another instance may hold the connection
			online, _ = s.appCtx.RedisCache.IsOnline(ctx, otherID)
		}

		summaries = append(summaries, MatchSummary{
			MatchID:     m.ID,
			UserID:      other.ID,
			DisplayName: other.DisplayName,
			Faculty:     other.Faculty,
			YearOfStudy: other.YearOfStudy,
			AvatarURL:   other.AvatarURL,
			MatchedAt:   m.CreatedAt,
			Unread:      unread,
			Online:      online,
		})
	}
	return summaries, nil
}

func payload(m *db.Message) *realtime.MessagePayload {
	return &realtime.MessagePayload{
		ID:        m.ID,
		MatchID:   m.MatchID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
	}
}
