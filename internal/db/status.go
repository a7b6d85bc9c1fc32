package db

import (
	"sort"
	"strings"
)

// Status is the relationship phase of a user, mirrored on the pairing.
type Status string

const (
	StatusOnboarding Status = "onboarding"
	StatusAvailable  Status = "available"
	StatusMatched    Status = "matched"
	StatusChatting   Status = "chatting"
	StatusFrozen     Status = "frozen"
	StatusBreakup    Status = "breakup"
)

var allStatuses = []Status{
	StatusOnboarding, StatusAvailable, StatusMatched,
	StatusChatting, StatusFrozen, StatusBreakup,
}

func (s Status) Valid() bool {
	for _, v := range allStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Gender drives candidate selection; matching pairs opposite genders.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender accepts any casing ("MALE", "Female") and rejects blanks and
// unknown values.
func ParseGender(s string) (Gender, bool) {
	switch Gender(strings.ToLower(strings.TrimSpace(s))) {
	case GenderMale:
		return GenderMale, true
	case GenderFemale:
		return GenderFemale, true
	}
	return "", false
}

func (g Gender) Opposite() Gender {
	if g == GenderMale {
		return GenderFemale
	}
	return GenderMale
}

// MessageType classifies chat content.
type MessageType string

const (
	MessageText   MessageType = "text"
	MessageImage  MessageType = "image"
	MessageVideo  MessageType = "video"
	MessageSystem MessageType = "system"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageVideo, MessageSystem:
		return true
	}
	return false
}

// RoomID is the deterministic channel identity of a pair:
// RoomID(a, b) == RoomID(b, a).
func RoomID(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return pair[0] + "-" + pair[1]
}

// SortedPair returns the two identities in lexicographic order.
func SortedPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
