package match

import (
	"context"

	"github.com/Saifkhan77806/LoveTown/internal/app"
	svcErr "github.com/Saifkhan77806/LoveTown/internal/errors"
	"github.com/Saifkhan77806/LoveTown/internal/rpc"
)

// Service implements the MatchService gRPC API on top of the Matchmaker.
type Service struct {
	appCtx     *app.AppContext
	matchmaker *Matchmaker

	rpc.UnimplementedMatchServiceServer
}

// NewMatchService creates a new Match service with dependencies from AppContext.
func NewMatchService(appCtx *app.AppContext, mm *Matchmaker) *Service {
	if mm == nil {
		mm = NewMatchmaker(appCtx)
	}
	return &Service{appCtx: appCtx, matchmaker: mm}
}

// FindMatch runs the matchmaker for the requester and returns the new
// pairing with the partner's profile.
//
// Example:
//
//	svc.FindMatch(ctx, &rpc.FindMatchRequest{Email: "a@x.com"})
func (s *Service) FindMatch(ctx context.Context, req *rpc.FindMatchRequest) (*rpc.MatchReply, error) {
	s.appCtx.Logger.Debug("FindMatch called", "user", req.GetEmail())

	pairing, err := s.matchmaker.FindMatch(ctx, req.GetEmail())
	if err != nil {
		return nil, svcErr.Map(err)
	}

	reply := &rpc.MatchReply{Match: rpc.FromMatch(pairing)}
	if partner, err := s.matchmaker.users.GetByEmail(ctx, pairing.Partner(req.GetEmail())); err == nil {
		reply.Partner = rpc.FromUser(partner)
	} else {
		s.appCtx.Logger.Warn("partner lookup failed", "user", req.GetEmail(), "err", err)
	}
	return reply, nil
}

// GetCurrentMatch returns the requester's active pairing and partner.
func (s *Service) GetCurrentMatch(ctx context.Context, req *rpc.GetCurrentMatchRequest) (*rpc.MatchReply, error) {
	s.appCtx.Logger.Debug("GetCurrentMatch called", "user", req.GetEmail())

	pairing, partner, err := s.matchmaker.CurrentMatch(ctx, req.GetEmail())
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &rpc.MatchReply{Match: rpc.FromMatch(pairing), Partner: rpc.FromUser(partner)}, nil
}
