package rpc

import (
	"github.com/Saifkhan77806/LoveTown/internal/db"
	"github.com/Saifkhan77806/LoveTown/internal/scheduler"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func FromMatch(m *db.Match) *Match {
	if m == nil {
		return nil
	}
	return &Match{
		Id:                 m.ID,
		User1:              m.User1,
		User2:              m.User2,
		CompatibilityScore: m.CompatibilityScore,
		MatchedAt:          timestamppb.New(m.MatchedAt),
		IsPinned:           m.IsPinned,
		Status:             string(m.Status),
	}
}

// FromUser renders the public profile. Embeddings are never exposed.
func FromUser(u *db.User) *Profile {
	if u == nil {
		return nil
	}
	return &Profile{
		Email:        u.Email,
		Name:         u.Name,
		Age:          u.Age,
		Bio:          u.Bio,
		Mood:         u.Mood,
		Gender:       u.Gender,
		Location:     u.Location,
		Interests:    u.Interests,
		Values:       u.Values,
		Status:       string(u.Status),
		MatchesCount: u.MatchesCount,
	}
}

func StatusOf(u *db.User) *StatusReply {
	if u == nil {
		return nil
	}
	r := &StatusReply{
		Email:        u.Email,
		Status:       string(u.Status),
		MatchesCount: u.MatchesCount,
	}
	if u.FrozenUntil != nil {
		r.FrozenUntil = timestamppb.New(*u.FrozenUntil)
	}
	return r
}

func FromJobs(jobs []scheduler.Job) *ListScheduledJobsReply {
	reply := &ListScheduledJobsReply{Jobs: make([]*ScheduledJob, 0, len(jobs))}
	for _, j := range jobs {
		reply.Jobs = append(reply.Jobs, &ScheduledJob{Id: j.ID, FireAt: timestamppb.New(j.FireAt)})
	}
	return reply
}
