// Package pagination encodes the opaque tokens chat history pages hand back
// to clients.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

var ErrInvalidCursor = errors.New("invalid pagination cursor")

// Cursor points at the oldest message of a page. The next page holds the
// messages strictly before it, ordered by (sent_at, id).
type Cursor struct {
	SentUnix  int64  `json:"t"`
	MessageID string `json:"id"`
}

func At(sentAt time.Time, id string) Cursor {
	return Cursor{SentUnix: sentAt.UnixMilli(), MessageID: id}
}

// IsZero reports whether the cursor denotes the newest page.
func (c Cursor) IsZero() bool { return c.SentUnix == 0 && c.MessageID == "" }

func (c Cursor) SentAt() time.Time { return time.UnixMilli(c.SentUnix) }

// Encode returns the URL-safe token for c, "" for the zero cursor.
func Encode(c Cursor) string {
	if c.IsZero() {
		return ""
	}
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

// Decode parses a token produced by Encode. "" is the newest page.
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}
	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil || c.MessageID == "" || c.SentUnix <= 0 {
		return Cursor{}, ErrInvalidCursor
	}
	return c, nil
}
