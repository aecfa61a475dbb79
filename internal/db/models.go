package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User account statuses. Registration creates a pending account; an admin
// approval flips it to approved; moderation can suspend it.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusSuspended = "suspended"
)

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User table. IDs are opaque UUID strings so match pairs can be canonicalized
// by plain lexicographic comparison.
type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	DisplayName  string `gorm:"size:64;not null"`
	Gender       string `gorm:"size:16;not null"`
	Faculty      string `gorm:"size:128"`
	YearOfStudy  int
	AvatarURL    string    `gorm:"size:512"`
	Role         string    `gorm:"size:16;not null;default:member"`
	Status       string    `gorm:"size:16;not null;default:pending;index"`
	LastLoginAt  time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Swipe represents an actor's current like/pass stance toward a target.
//
// Composite PK: (ActorID, TargetID)
//   - Ensures a single row per directed pair (overwrite guarantee); re-swiping
//     updates `liked` in place instead of growing per-user lists.
//
// Indexes:
//   - idx_target_liked_updated_actor(target_id, liked, updated_at DESC, actor_id)
//     Optimizes "who liked me" listings with cursor pagination.
//   - idx_actor_target_liked(actor_id, target_id, liked)
//     Optimizes O(1) reverse-edge lookup for mutual like checks.
type Swipe struct {
	ActorID   string    `gorm:"primaryKey;size:36;index:idx_actor_target_liked,priority:1"`
	TargetID  string    `gorm:"primaryKey;size:36;index:idx_target_liked_updated_actor,priority:1;index:idx_actor_target_liked,priority:2"`
	Liked     bool      `gorm:"not null;index:idx_target_liked_updated_actor,priority:2;index:idx_actor_target_liked,priority:3"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index:idx_target_liked_updated_actor,priority:3,sort:desc"`
}

// SwipeEvent is the append-only audit log of swipe actions. Unlike Swipe it
// is never updated or deleted; repeated swipes between the same pair append
// new rows.
type SwipeEvent struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	ActorID   string    `gorm:"size:36;not null;index"`
	TargetID  string    `gorm:"size:36;not null"`
	Liked     bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Match is the materialized mutual-like relationship.
//
// Invariant: UserAID < UserBID lexicographically (canonical pair ordering),
// enforced in the repository, and idx_match_pair makes the pair unique at the
// storage layer so concurrent reciprocal likes cannot produce duplicates.
type Match struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserAID   string    `gorm:"size:36;not null;uniqueIndex:idx_match_pair,priority:1;index"`
	UserBID   string    `gorm:"size:36;not null;uniqueIndex:idx_match_pair,priority:2;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (m *Match) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// HasUser reports whether userID is one of the two participants.
func (m *Match) HasUser(userID string) bool {
	return m.UserAID == userID || m.UserBID == userID
}

// OtherUser returns the counterpart of userID, or "" if userID is not a
// participant.
func (m *Match) OtherUser(userID string) string {
	switch userID {
	case m.UserAID:
		return m.UserBID
	case m.UserBID:
		return m.UserAID
	}
	return ""
}

// Message belongs to exactly one match. Read flips to true when the recipient
// fetches the conversation; rows are never deleted by normal flow.
type Message struct {
	ID        string `gorm:"primaryKey;size:36"`
	MatchID   string `gorm:"size:36;not null;index:idx_match_created,priority:1;index:idx_match_read_sender,priority:1"`
	SenderID  string `gorm:"size:36;not null;index:idx_match_read_sender,priority:3"`
	Content   string `gorm:"type:text;not null"`
	Read      bool   `gorm:"not null;default:false;index:idx_match_read_sender,priority:2"`
	ReadAt    *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_match_created,priority:2"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Block is a directed block edge. Either direction hides the pair from
// discovery and forbids messaging.
type Block struct {
	BlockerID string    `gorm:"primaryKey;size:36"`
	BlockedID string    `gorm:"primaryKey;size:36"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
