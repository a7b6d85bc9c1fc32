package relationship

import (
	"context"

	"github.com/Saifkhan77806/LoveTown/internal/app"
	svcErr "github.com/Saifkhan77806/LoveTown/internal/errors"
	"github.com/Saifkhan77806/LoveTown/internal/rpc"
)

// Service implements the RelationshipService gRPC API.
type Service struct {
	appCtx  *app.AppContext
	machine *Machine

	rpc.UnimplementedRelationshipServiceServer
}

func NewRelationshipService(appCtx *app.AppContext, machine *Machine) *Service {
	if machine == nil {
		machine = NewMachine(appCtx, nil)
	}
	return &Service{appCtx: appCtx, machine: machine}
}

// CompleteOnboarding is called by the onboarding flow once a profile is
// complete.
func (s *Service) CompleteOnboarding(ctx context.Context, req *rpc.CompleteOnboardingRequest) (*rpc.StatusReply, error) {
	s.appCtx.Logger.Debug("CompleteOnboarding called", "user", req.GetEmail())

	u, err := s.machine.CompleteOnboarding(ctx, req.GetEmail())
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return rpc.StatusOf(u), nil
}

// Unpin ends the caller's pairing; the caller is frozen and the partner
// goes to breakup.
//
// Example:
//
//	svc.Unpin(ctx, &rpc.UnpinRequest{Email: "a@x.com"})
func (s *Service) Unpin(ctx context.Context, req *rpc.UnpinRequest) (*rpc.UnpinReply, error) {
	s.appCtx.Logger.Debug("Unpin called", "user", req.GetEmail())

	res, err := s.machine.Unpin(ctx, req.GetEmail())
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &rpc.UnpinReply{
		Initiator: rpc.StatusOf(res.Initiator),
		Partner:   rpc.StatusOf(res.Partner),
	}, nil
}

func (s *Service) GetStatus(ctx context.Context, req *rpc.GetStatusRequest) (*rpc.StatusReply, error) {
	u, err := s.machine.Status(ctx, req.GetEmail())
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return rpc.StatusOf(u), nil
}

// ListScheduledJobs exposes the live scheduler jobs for operators.
func (s *Service) ListScheduledJobs(context.Context, *rpc.ListScheduledJobsRequest) (*rpc.ListScheduledJobsReply, error) {
	return rpc.FromJobs(s.appCtx.Scheduler.Jobs()), nil
}
