package rpc

import (
	"google.golang.org/protobuf/types/known/timestamppb"
)

type Profile struct {
	Email        string   `json:"email"`
	Name         string   `json:"name,omitempty"`
	Age          int      `json:"age,omitempty"`
	Bio          string   `json:"bio,omitempty"`
	Mood         string   `json:"mood,omitempty"`
	Gender       string   `json:"gender,omitempty"`
	Location     string   `json:"location,omitempty"`
	Interests    []string `json:"interests,omitempty"`
	Values       []string `json:"values,omitempty"`
	Status       string   `json:"status"`
	MatchesCount int64    `json:"matchesCount"`
}

type Match struct {
	Id                 uint64                 `json:"id"`
	User1              string                 `json:"user1"`
	User2              string                 `json:"user2"`
	CompatibilityScore float64                `json:"compatibilityScore"`
	MatchedAt          *timestamppb.Timestamp `json:"matchedAt,omitempty"`
	IsPinned           bool                   `json:"isPinned"`
	Status             string                 `json:"status"`
}

type FindMatchRequest struct {
	Email string `json:"email"`
}

func (x *FindMatchRequest) GetEmail() string {
	if x != nil {
		return x.Email
	}
	return ""
}

type GetCurrentMatchRequest struct {
	Email string `json:"email"`
}

func (x *GetCurrentMatchRequest) GetEmail() string {
	if x != nil {
		return x.Email
	}
	return ""
}

type MatchReply struct {
	Match   *Match   `json:"match"`
	Partner *Profile `json:"partner,omitempty"`
}

type CompleteOnboardingRequest struct {
	Email string `json:"email"`
}

func (x *CompleteOnboardingRequest) GetEmail() string {
	if x != nil {
		return x.Email
	}
	return ""
}

type UnpinRequest struct {
	Email string `json:"email"`
}

func (x *UnpinRequest) GetEmail() string {
	if x != nil {
		return x.Email
	}
	return ""
}

type GetStatusRequest struct {
	Email string `json:"email"`
}

func (x *GetStatusRequest) GetEmail() string {
	if x != nil {
		return x.Email
	}
	return ""
}

type StatusReply struct {
	Email        string                 `json:"email"`
	Status       string                 `json:"status"`
	MatchesCount int64                  `json:"matchesCount"`
	FrozenUntil  *timestamppb.Timestamp `json:"frozenUntil,omitempty"`
}

type UnpinReply struct {
	Initiator *StatusReply `json:"initiator"`
	Partner   *StatusReply `json:"partner"`
}

type ListScheduledJobsRequest struct{}

type ScheduledJob struct {
	Id     string                 `json:"id"`
	FireAt *timestamppb.Timestamp `json:"fireAt"`
}

type ListScheduledJobsReply struct {
	Jobs []*ScheduledJob `json:"jobs"`
}
