package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	RelationshipService_CompleteOnboarding_FullMethodName = "/lovetown.v1.RelationshipService/CompleteOnboarding"
	RelationshipService_Unpin_FullMethodName              = "/lovetown.v1.RelationshipService/Unpin"
	RelationshipService_GetStatus_FullMethodName          = "/lovetown.v1.RelationshipService/GetStatus"
	RelationshipService_ListScheduledJobs_FullMethodName  = "/lovetown.v1.RelationshipService/ListScheduledJobs"
)

// RelationshipServiceServer is the server API for RelationshipService.
type RelationshipServiceServer interface {
	CompleteOnboarding(context.Context, *CompleteOnboardingRequest) (*StatusReply, error)
	Unpin(context.Context, *UnpinRequest) (*UnpinReply, error)
	GetStatus(context.Context, *GetStatusRequest) (*StatusReply, error)
	ListScheduledJobs(context.Context, *ListScheduledJobsRequest) (*ListScheduledJobsReply, error)
}

// UnimplementedRelationshipServiceServer can be embedded to have forward compatible implementations.
type UnimplementedRelationshipServiceServer struct{}

func (UnimplementedRelationshipServiceServer) CompleteOnboarding(context.Context, *CompleteOnboardingRequest) (*StatusReply, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CompleteOnboarding not implemented")
}

func (UnimplementedRelationshipServiceServer) Unpin(context.Context, *UnpinRequest) (*UnpinReply, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Unpin not implemented")
}

func (UnimplementedRelationshipServiceServer) GetStatus(context.Context, *GetStatusRequest) (*StatusReply, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetStatus not implemented")
}

func (UnimplementedRelationshipServiceServer) ListScheduledJobs(context.Context, *ListScheduledJobsRequest) (*ListScheduledJobsReply, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListScheduledJobs not implemented")
}

func RegisterRelationshipServiceServer(s grpc.ServiceRegistrar, srv RelationshipServiceServer) {
	s.RegisterService(&RelationshipService_ServiceDesc, srv)
}

func _RelationshipService_CompleteOnboarding_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CompleteOnboardingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RelationshipServiceServer).CompleteOnboarding(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: RelationshipService_CompleteOnboarding_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RelationshipServiceServer).CompleteOnboarding(ctx, req.(*CompleteOnboardingRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _RelationshipService_Unpin_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(UnpinRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RelationshipServiceServer).Unpin(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: RelationshipService_Unpin_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RelationshipServiceServer).Unpin(ctx, req.(*UnpinRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _RelationshipService_GetStatus_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetStatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RelationshipServiceServer).GetStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: RelationshipService_GetStatus_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RelationshipServiceServer).GetStatus(ctx, req.(*GetStatusRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _RelationshipService_ListScheduledJobs_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListScheduledJobsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RelationshipServiceServer).ListScheduledJobs(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: RelationshipService_ListScheduledJobs_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RelationshipServiceServer).ListScheduledJobs(ctx, req.(*ListScheduledJobsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// RelationshipService_ServiceDesc is the grpc.ServiceDesc for RelationshipService.
var RelationshipService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "lovetown.v1.RelationshipService",
	HandlerType: (*RelationshipServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CompleteOnboarding", Handler: _RelationshipService_CompleteOnboarding_Handler},
		{MethodName: "Unpin", Handler: _RelationshipService_Unpin_Handler},
		{MethodName: "GetStatus", Handler: _RelationshipService_GetStatus_Handler},
		{MethodName: "ListScheduledJobs", Handler: _RelationshipService_ListScheduledJobs_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lovetown/v1/relationship",
}

// RelationshipServiceClient is the client API for RelationshipService.
type RelationshipServiceClient interface {
	CompleteOnboarding(ctx context.Context, in *CompleteOnboardingRequest, opts ...grpc.CallOption) (*StatusReply, error)
	Unpin(ctx context.Context, in *UnpinRequest, opts ...grpc.CallOption) (*UnpinReply, error)
	GetStatus(ctx context.Context, in *GetStatusRequest, opts ...grpc.CallOption) (*StatusReply, error)
	ListScheduledJobs(ctx context.Context, in *ListScheduledJobsRequest, opts ...grpc.CallOption) (*ListScheduledJobsReply, error)
}

type relationshipServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewRelationshipServiceClient(cc grpc.ClientConnInterface) RelationshipServiceClient {
	return &relationshipServiceClient{cc}
}

func (c *relationshipServiceClient) CompleteOnboarding(ctx context.Context, in *CompleteOnboardingRequest, opts ...grpc.CallOption) (*StatusReply, error) {
	out := new(StatusReply)
	if err := c.cc.Invoke(ctx, RelationshipService_CompleteOnboarding_FullMethodName, in, out, append([]grpc.CallOption{JSON()}, opts...)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *relationshipServiceClient) Unpin(ctx context.Context, in *UnpinRequest, opts ...grpc.CallOption) (*UnpinReply, error) {
	out := new(UnpinReply)
	if err := c.cc.Invoke(ctx, RelationshipService_Unpin_FullMethodName, in, out, append([]grpc.CallOption{JSON()}, opts...)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *relationshipServiceClient) GetStatus(ctx context.Context, in *GetStatusRequest, opts ...grpc.CallOption) (*StatusReply, error) {
	out := new(StatusReply)
	if err := c.cc.Invoke(ctx, RelationshipService_GetStatus_FullMethodName, in, out, append([]grpc.CallOption{JSON()}, opts...)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *relationshipServiceClient) ListScheduledJobs(ctx context.Context, in *ListScheduledJobsRequest, opts ...grpc.CallOption) (*ListScheduledJobsReply, error) {
	out := new(ListScheduledJobsReply)
	if err := c.cc.Invoke(ctx, RelationshipService_ListScheduledJobs_FullMethodName, in, out, append([]grpc.CallOption{JSON()}, opts...)...); err != nil {
		return nil, err
	}
	return out, nil
}
