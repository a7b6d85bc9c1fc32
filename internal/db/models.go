package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is a dater. Email is the durable identity handed to us by the
// identity provider. Status and MatchesCount are owned by the matchmaker
// and the relationship state machine.
type User struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement"`
	Email         string `gorm:"uniqueIndex;size:128;not null"`
	Name          string `gorm:"size:128"`
	Age           int    `gorm:"not null;default:0"`
	Bio           string `gorm:"type:text"`
	Mood          string `gorm:"size:255"`
	Gender        string `gorm:"size:16;index:idx_users_gender_status,priority:1"`
	Location      string `gorm:"size:128"`
	Interests     datatypes.JSONSlice[string]
	Values        datatypes.JSONSlice[string]
	BioEmbedding  datatypes.JSONSlice[float64]
	MoodEmbedding datatypes.JSONSlice[float64]
	Status        Status `gorm:"size:16;not null;index:idx_users_gender_status,priority:2"`
	MatchesCount  int64  `gorm:"not null;default:0"`
	FrozenUntil   *time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// BeforeSave rejects statuses outside the six relationship phases.
func (u *User) BeforeSave(*gorm.DB) error {
	if u.Status == "" {
		u.Status = StatusOnboarding
	}
	if !u.Status.Valid() {
		return fmt.Errorf("user %s: unknown status %q", u.Email, u.Status)
	}
	return nil
}

// Match is the pairing between two users. User1 < User2 always holds so the
// unique index over the pair also catches flipped duplicates.
//
// Indexes:
//   - idx_match_pair(user1, user2) unique
//   - idx_match_user2(user2) for "pairing containing X" lookups on the second slot
type Match struct {
	ID                 uint64    `gorm:"primaryKey;autoIncrement"`
	User1              string    `gorm:"size:128;not null;uniqueIndex:idx_match_pair,priority:1"`
	User2              string    `gorm:"size:128;not null;uniqueIndex:idx_match_pair,priority:2;index:idx_match_user2"`
	CompatibilityScore float64   `gorm:"not null"`
	MatchedAt          time.Time `gorm:"not null"`
	IsPinned           bool      `gorm:"not null"`
	Status             Status    `gorm:"size:16;not null"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}

// NewMatch builds a pinned pairing in status matched.
func NewMatch(a, b string, score float64, at time.Time) (*Match, error) {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return nil, errors.New("match: both participants are required")
	}
	if a == b {
		return nil, fmt.Errorf("match: cannot pair %s with themselves", a)
	}
	u1, u2 := SortedPair(a, b)
	return &Match{
		User1:              u1,
		User2:              u2,
		CompatibilityScore: score,
		MatchedAt:          at,
		IsPinned:           true,
		Status:             StatusMatched,
	}, nil
}

// Ref names this pairing instance. A pair that splits and is paired again
// gets a new Ref even if the row id is reused.
func (m *Match) Ref() string {
	return fmt.Sprintf("%d.%d", m.ID, m.MatchedAt.UnixMilli())
}

// Partner returns the other participant, or "" if email is not in the pair.
func (m *Match) Partner(email string) string {
	switch email {
	case m.User1:
		return m.User2
	case m.User2:
		return m.User1
	}
	return ""
}

// Message is one chat line between two users. The room is derived from
// (From, To) and not stored. SentAt is assigned by the server and is the
// ordering key; ClientTimestamp is kept only as a display hint.
//
// Indexes:
//   - idx_messages_pair_sent(from_email, to_email, sent_at) for history and counts
type Message struct {
	ID              string      `gorm:"primaryKey;size:36" json:"id"`
	From            string      `gorm:"column:from_email;size:128;not null;index:idx_messages_pair_sent,priority:1" json:"from"`
	To              string      `gorm:"column:to_email;size:128;not null;index:idx_messages_pair_sent,priority:2" json:"to"`
	Content         string      `gorm:"type:text;not null" json:"content"`
	Type            MessageType `gorm:"size:16;not null" json:"type"`
	SentAt          time.Time   `gorm:"not null;index:idx_messages_pair_sent,priority:3" json:"timestamp"`
	ClientTimestamp *time.Time  `json:"clientTimestamp,omitempty"`
	Read            bool        `gorm:"column:is_read;not null" json:"read"`
	CreatedAt       time.Time   `gorm:"autoCreateTime" json:"-"`
}

// NewMessage validates and stamps a message. The id is a UUIDv7 so ids
// sort in creation order as a tie-break for equal SentAt values.
func NewMessage(from, to, content string, typ MessageType, sentAt time.Time, clientTS *time.Time) (*Message, error) {
	if from == "" || to == "" {
		return nil, errors.New("message: sender and recipient are required")
	}
	if from == to {
		return nil, errors.New("message: sender and recipient must differ")
	}
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("message: content is empty")
	}
	if typ == "" {
		typ = MessageText
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("message: unknown type %q", typ)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("message: id: %w", err)
	}
	return &Message{
		ID:              id.String(),
		From:            from,
		To:              to,
		Content:         content,
		Type:            typ,
		SentAt:          sentAt,
		ClientTimestamp: clientTS,
	}, nil
}

// UserMessage is the per-user ordered back-reference list of messages.
type UserMessage struct {
	UserEmail string    `gorm:"primaryKey;size:128"`
	MessageID string    `gorm:"primaryKey;size:36;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// AllModels lists every table for AutoMigrate.
func AllModels() []any {
	return []any{&User{}, &Match{}, &Message{}, &UserMessage{}}
}
