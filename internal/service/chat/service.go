// Package chat persists messages between two users and watches each room's
// message count for the milestone that unlocks video calls.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Saifkhan77806/LoveTown/internal/app"
	"github.com/Saifkhan77806/LoveTown/internal/db"
	svcErr "github.com/Saifkhan77806/LoveTown/internal/errors"
	"github.com/Saifkhan77806/LoveTown/internal/logger"
	"github.com/Saifkhan77806/LoveTown/internal/repository"
	"github.com/Saifkhan77806/LoveTown/internal/utils/pagination"
	"gorm.io/gorm"
)

const (
	defaultMilestone    = 100
	defaultHistoryLimit = 100
)

// MilestoneHandler advances a pair once their room reaches the milestone.
// It must tolerate repeated calls and report whether this call advanced.
type MilestoneHandler interface {
	ReachMilestone(ctx context.Context, a, b string) (bool, error)
}

type Service struct {
	appCtx       *app.AppContext
	messages     *repository.MessageRepository
	matches      *repository.MatchRepository
	milestone    MilestoneHandler
	threshold    int64
	historyLimit int
}

func NewService(appCtx *app.AppContext, milestone MilestoneHandler) *Service {
	s := &Service{
		appCtx:       appCtx,
		messages:     repository.NewMessageRepository(appCtx.DB),
		matches:      repository.NewMatchRepository(appCtx.DB),
		milestone:    milestone,
		threshold:    defaultMilestone,
		historyLimit: defaultHistoryLimit,
	}
	if cfg := appCtx.Config; cfg != nil {
		if cfg.Chat.Milestone > 0 {
			s.threshold = cfg.Chat.Milestone
		}
		if cfg.Chat.HistoryLimit > 0 {
			s.historyLimit = cfg.Chat.HistoryLimit
		}
	}
	return s
}

func (s *Service) Milestone() int64 { return s.threshold }

type SendInput struct {
	From            string
	To              string
	Content         string
	Type            db.MessageType
	ClientTimestamp *time.Time
}

type SendResult struct {
	Message *db.Message
	// Count is the room total read back after the insert.
	Count int64
	// MilestoneReached is true only for the send that moved the pair to chatting.
	MilestoneReached bool
	VideoUnlocked    bool
}

// Send validates and stores a message, then recounts the room.
//
// Behavior:
//   - The server clock stamps the message; the client timestamp is kept as a hint.
//   - The count is a COUNT over storage after the insert, never read-then-increment.
//   - The first send to see count >= milestone while the pair holds a matched
//     pairing sets that pairing's Redis flag and asks the MilestoneHandler to
//     advance the pair. Later sends for the same pairing skip the handler.
//   - A store failure is a DeliveryFailure; the message is not to be broadcast.
func (s *Service) Send(ctx context.Context, in SendInput) (*SendResult, error) {
	in.From, in.To = strings.TrimSpace(in.From), strings.TrimSpace(in.To)
	msg, err := db.NewMessage(in.From, in.To, in.Content, in.Type, s.appCtx.Now(), in.ClientTimestamp)
	if err != nil {
		return nil, svcErr.Wrap(svcErr.CodeInvalidArgument, "invalid message", err)
	}

	roomID := db.RoomID(in.From, in.To)
	log := logger.ForRoom(s.appCtx.Logger, roomID).With("user", in.From)

	if err := s.messages.Create(ctx, msg); err != nil {
		log.Error("message not stored", "err", err)
		return nil, svcErr.DeliveryFailure(err)
	}

	count, err := s.messages.CountBetween(ctx, in.From, in.To)
	if err != nil {
		log.Error("message count failed", "err", err)
		return nil, svcErr.DeliveryFailure(err)
	}
	if err := s.appCtx.RedisCache.SetMessageCount(ctx, roomID, count); err != nil {
		log.Warn("count cache update failed", "err", err)
	}

	res := &SendResult{Message: msg, Count: count}
	if count >= s.threshold && s.milestone != nil {
		res.MilestoneReached = s.checkMilestone(ctx, in.From, in.To, log)
	}
	if res.VideoUnlocked, err = s.unlocked(ctx, in.From, in.To, count); err != nil {
		log.Warn("video gate check failed", "err", err)
	}
	return res, nil
}

func (s *Service) checkMilestone(ctx context.Context, a, b string, log *slog.Logger) bool {
	pairing, err := s.matches.FindBetween(ctx, a, b)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("pairing lookup failed", "err", err)
		}
		return false
	}
	if pairing.Status != db.StatusMatched {
		return false
	}

	ref := pairing.Ref()
	first, err := s.appCtx.RedisCache.MarkMilestone(ctx, ref)
	if err != nil {
		// without the flag fall back on the handler's own idempotence
		log.Warn("milestone flag unavailable", "err", err)
	} else if !first {
		return false
	}

	advanced, err := s.milestone.ReachMilestone(ctx, a, b)
	if err != nil {
		log.Warn("milestone transition failed", "err", err)
		if first {
			// let the next message retry
			if cerr := s.appCtx.RedisCache.ClearMilestone(ctx, ref); cerr != nil {
				log.Warn("milestone flag not cleared", "err", cerr)
			}
		}
		return false
	}
	if advanced {
		log.Info("milestone reached", "threshold", s.threshold)
	}
	return advanced
}

// Count returns the room total, cache first.
func (s *Service) Count(ctx context.Context, a, b string) (int64, error) {
	roomID := db.RoomID(a, b)
	if n, ok, err := s.appCtx.RedisCache.GetMessageCount(ctx, roomID); err == nil && ok {
		return n, nil
	}

	// fallback: DB
	n, err := s.messages.CountBetween(ctx, a, b)
	if err != nil {
		return 0, err
	}
	_ = s.appCtx.RedisCache.SetMessageCount(ctx, roomID, n)
	return n, nil
}

// VideoUnlocked reports whether a and b may start a call: their room holds
// at least the milestone, or their pairing is already chatting. Deleting
// messages never locks a chatting pair out again.
func (s *Service) VideoUnlocked(ctx context.Context, a, b string) (bool, error) {
	n, err := s.Count(ctx, a, b)
	if err != nil {
		return false, err
	}
	return s.unlocked(ctx, a, b, n)
}

func (s *Service) unlocked(ctx context.Context, a, b string, n int64) (bool, error) {
	if n >= s.threshold {
		return true, nil
	}
	pairing, err := s.matches.FindBetween(ctx, a, b)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return pairing.Status == db.StatusChatting, nil
}

type HistoryPage struct {
	Messages   []db.Message `json:"messages"`
	HasMore    bool         `json:"hasMore"`
	NextCursor string       `json:"nextCursor,omitempty"`
	Total      int64        `json:"total"`
}

// History returns up to limit messages of the room in ascending order.
// cursor is the NextCursor of a previous page, "" for the newest page.
// limit <= 0 or above the configured cap falls back to the cap.
func (s *Service) History(ctx context.Context, a, b string, limit int, cursor string) (*HistoryPage, error) {
	if a == "" || b == "" {
		return nil, svcErr.BadInput("both participants are required")
	}
	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}
	before, err := pagination.Decode(cursor)
	if err != nil {
		return nil, svcErr.BadInput(err.Error())
	}

	msgs, more, err := s.messages.Recent(ctx, a, b, limit, before)
	if err != nil {
		return nil, err
	}
	page := &HistoryPage{Messages: msgs, HasMore: more}
	if more && len(msgs) > 0 {
		page.NextCursor = pagination.Encode(pagination.At(msgs[0].SentAt, msgs[0].ID))
	}
	if page.Total, err = s.Count(ctx, a, b); err != nil {
		return nil, err
	}
	return page, nil
}

// Delete removes a message. Only its sender may do so.
func (s *Service) Delete(ctx context.Context, requester, id string) (*db.Message, error) {
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return nil, svcErr.NotFoundOr(err, "message %s not found", id)
	}
	if msg.From != requester {
		return nil, svcErr.Unauthorized("only the sender can delete a message")
	}
	if err := s.messages.Delete(ctx, id); err != nil {
		return nil, svcErr.NotFoundOr(err, "message %s not found", id)
	}

	roomID := db.RoomID(msg.From, msg.To)
	if err := s.appCtx.RedisCache.DropMessageCount(ctx, roomID); err != nil {
		s.appCtx.Logger.Warn("count cache invalidation failed", "room", roomID, "err", err)
	}
	return msg, nil
}

// MarkRead flags partner's messages to reader as read.
func (s *Service) MarkRead(ctx context.Context, reader, partner string) (int64, error) {
	if reader == "" || partner == "" {
		return 0, svcErr.BadInput("reader and partner are required")
	}
	return s.messages.MarkRead(ctx, reader, partner)
}

type Conversation struct {
	Partner       string      `json:"partner"`
	LastMessage   *db.Message `json:"lastMessage"`
	UnreadCount   int64       `json:"unreadCount"`
	TotalMessages int64       `json:"totalMessages"`
}

// Conversations lists every room of email, most recent activity first.
func (s *Service) Conversations(ctx context.Context, email string) ([]Conversation, error) {
	partners, err := s.messages.Partners(ctx, email)
	if err != nil {
		return nil, err
	}

	convs := make([]Conversation, 0, len(partners))
	for _, p := range partners {
		last, err := s.messages.Last(ctx, email, p)
		if err != nil {
			// a concurrent delete may have emptied the room
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		unread, err := s.messages.UnreadFrom(ctx, email, p)
		if err != nil {
			return nil, err
		}
		total, err := s.Count(ctx, email, p)
		if err != nil {
			return nil, err
		}
		convs = append(convs, Conversation{Partner: p, LastMessage: last, UnreadCount: unread, TotalMessages: total})
	}

	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].LastMessage.SentAt.After(convs[j].LastMessage.SentAt)
	})
	return convs, nil
}
