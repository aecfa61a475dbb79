package repository

import (
	"context"
	"time"

	"github.com/campusmatch/campusmatch/internal/db"

	"gorm.io/gorm"
)

// MessageRepository provides data access for chat messages.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

// MessageWithSender is a message row annotated with the sender's display name
// for history responses.
type MessageWithSender struct {
	db.Message
	SenderName string
}

// Create persists a message. The realtime layer persists before any relay
// attempt so delivery failures never lose messages.
func (r *MessageRepository) Create(ctx context.Context, msg *db.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListByMatch returns all messages of a match in chronological order,
// annotated with the sender display name.
func (r *MessageRepository) ListByMatch(ctx context.Context, matchID string) ([]MessageWithSender, error) {
	var rows []MessageWithSender
	err := r.db.WithContext(ctx).
		Table("messages m").
		Select("m.*, u.display_name AS sender_name").
		Joins("JOIN users u ON u.id = m.sender_id").
		Where("m.match_id = ?", matchID).
		Order("m.created_at ASC, m.id ASC").
		Find(&rows).Error
	return rows, err
}

// MarkRead flips the read flag on every unread message in the match that was
// NOT authored by readerID. Returns the number of rows flipped so callers can
// skip the counterparty notification when nothing changed.
func (r *MessageRepository) MarkRead(ctx context.Context, matchID, readerID string) (int64, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("match_id = ? AND sender_id <> ? AND `read` = false", matchID, readerID).
		Updates(map[string]interface{}{"read": true, "read_at": &now})
	return res.RowsAffected, res.Error
}

// CountUnread returns how many messages in the match are unread by userID.
func (r *MessageRepository) CountUnread(ctx context.Context, matchID, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("match_id = ? AND sender_id <> ? AND `read` = false", matchID, userID).
		Count(&count).Error
	return count, err
}
