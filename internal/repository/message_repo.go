package repository

import (
	"context"
	"sort"

	"github.com/Saifkhan77806/LoveTown/internal/db"
	"github.com/Saifkhan77806/LoveTown/internal/utils/pagination"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// MessageRepository provides data access methods for the Message model and
// the per-user back-references.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new repository bound to the given DB connection.
func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

// WithTx returns a copy of the repository that runs on tx.
func (r *MessageRepository) WithTx(tx *gorm.DB) *MessageRepository {
	return &MessageRepository{db: tx}
}

// between scopes a query to the messages of one room.
func between(a, b string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("((from_email = ? AND to_email = ?) OR (from_email = ? AND to_email = ?))", a, b, b, a)
	}
}

// Create inserts the message and appends a back-reference for both
// participants in one transaction.
func (r *MessageRepository) Create(ctx context.Context, m *db.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		refs := []db.UserMessage{
			{UserEmail: m.From, MessageID: m.ID},
			{UserEmail: m.To, MessageID: m.ID},
		}
		return tx.Create(&refs).Error
	})
	return errors.Wrap(err, "messageRepo.Create")
}

// CountBetween returns the total number of messages in the room of a and b.
func (r *MessageRepository) CountBetween(ctx context.Context, a, b string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Message{}).Scopes(between(a, b)).Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "messageRepo.CountBetween")
	}
	return count, nil
}

// Recent returns up to limit messages of the room, oldest first.
//
// Behavior:
//   - Picks the newest `limit` messages older than `before` (zero cursor = newest overall).
//   - Ordered by sent_at, id; UUIDv7 ids break ties in creation order.
//   - hasMore reports whether older messages remain.
//
// Example:
//
//	msgs, more, err := repo.Recent(ctx, "a@x.com", "b@x.com", 100, pagination.Cursor{})
func (r *MessageRepository) Recent(
	ctx context.Context,
	a, b string,
	limit int,
	before pagination.Cursor,
) ([]db.Message, bool, error) {
	var msgs []db.Message

	query := r.db.WithContext(ctx).
		Scopes(between(a, b)).
		Order("sent_at DESC, id DESC").
		Limit(limit + 1)

	// apply cursor
	if !before.IsZero() {
		ts := before.SentAt()
		query = query.Where(
			"(sent_at < ? OR (sent_at = ? AND id < ?))",
			ts, ts, before.MessageID,
		)
	}

	if err := query.Find(&msgs).Error; err != nil {
		return nil, false, errors.Wrap(err, "messageRepo.Recent")
	}

	hasMore := len(msgs) > limit
	if hasMore {
		msgs = msgs[:limit]
	}
	// flip to ascending for replay
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, hasMore, nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id string) (*db.Message, error) {
	var m db.Message
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, errors.Wrapf(err, "messageRepo.GetByID(%s)", id)
	}
	return &m, nil
}

// Delete removes the message and its back-references.
func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&db.UserMessage{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&db.Message{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return errors.Wrapf(err, "messageRepo.Delete(%s)", id)
}

// MarkRead flags every unread message from partner to reader as read and
// returns how many changed.
func (r *MessageRepository) MarkRead(ctx context.Context, reader, partner string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("from_email = ? AND to_email = ? AND is_read = ?", partner, reader, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "messageRepo.MarkRead")
	}
	return res.RowsAffected, nil
}

// UnreadFrom counts messages partner sent to reader that are still unread.
func (r *MessageRepository) UnreadFrom(ctx context.Context, reader, partner string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("from_email = ? AND to_email = ? AND is_read = ?", partner, reader, false).
		Count(&count).Error
	return count, errors.Wrap(err, "messageRepo.UnreadFrom")
}

// Partners lists every identity email has exchanged messages with, sorted.
func (r *MessageRepository) Partners(ctx context.Context, email string) ([]string, error) {
	var sentTo, receivedFrom []string
	if err := r.db.WithContext(ctx).Model(&db.Message{}).
		Where("from_email = ?", email).
		Distinct().Pluck("to_email", &sentTo).Error; err != nil {
		return nil, errors.Wrap(err, "messageRepo.Partners")
	}
	if err := r.db.WithContext(ctx).Model(&db.Message{}).
		Where("to_email = ?", email).
		Distinct().Pluck("from_email", &receivedFrom).Error; err != nil {
		return nil, errors.Wrap(err, "messageRepo.Partners")
	}

	seen := make(map[string]struct{}, len(sentTo)+len(receivedFrom))
	partners := make([]string, 0, len(sentTo)+len(receivedFrom))
	for _, p := range append(sentTo, receivedFrom...) {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		partners = append(partners, p)
	}
	sort.Strings(partners)
	return partners, nil
}

// Last returns the newest message of the room.
func (r *MessageRepository) Last(ctx context.Context, a, b string) (*db.Message, error) {
	var m db.Message
	err := r.db.WithContext(ctx).Scopes(between(a, b)).Order("sent_at DESC, id DESC").First(&m).Error
	if err != nil {
		return nil, errors.Wrap(err, "messageRepo.Last")
	}
	return &m, nil
}
