package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	MatchService_FindMatch_FullMethodName       = "/lovetown.v1.MatchService/FindMatch"
	MatchService_GetCurrentMatch_FullMethodName = "/lovetown.v1.MatchService/GetCurrentMatch"
)

// MatchServiceServer is the server API for MatchService.
type MatchServiceServer interface {
	FindMatch(context.Context, *FindMatchRequest) (*MatchReply, error)
	GetCurrentMatch(context.Context, *GetCurrentMatchRequest) (*MatchReply, error)
}

// UnimplementedMatchServiceServer can be embedded to have forward compatible implementations.
type UnimplementedMatchServiceServer struct{}

func (UnimplementedMatchServiceServer) FindMatch(context.Context, *FindMatchRequest) (*MatchReply, error) {
	return nil, status.Errorf(codes.Unimplemented, "method FindMatch not implemented")
}

func (UnimplementedMatchServiceServer) GetCurrentMatch(context.Context, *GetCurrentMatchRequest) (*MatchReply, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetCurrentMatch not implemented")
}

func RegisterMatchServiceServer(s grpc.ServiceRegistrar, srv MatchServiceServer) {
	s.RegisterService(&MatchService_ServiceDesc, srv)
}

func _MatchService_FindMatch_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(FindMatchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MatchServiceServer).FindMatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MatchService_FindMatch_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MatchServiceServer).FindMatch(ctx, req.(*FindMatchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MatchService_GetCurrentMatch_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetCurrentMatchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MatchServiceServer).GetCurrentMatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MatchService_GetCurrentMatch_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MatchServiceServer).GetCurrentMatch(ctx, req.(*GetCurrentMatchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// MatchService_ServiceDesc is the grpc.ServiceDesc for MatchService.
var MatchService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "lovetown.v1.MatchService",
	HandlerType: (*MatchServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "FindMatch", Handler: _MatchService_FindMatch_Handler},
		{MethodName: "GetCurrentMatch", Handler: _MatchService_GetCurrentMatch_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lovetown/v1/match",
}

// MatchServiceClient is the client API for MatchService.
type MatchServiceClient interface {
	FindMatch(ctx context.Context, in *FindMatchRequest, opts ...grpc.CallOption) (*MatchReply, error)
	GetCurrentMatch(ctx context.Context, in *GetCurrentMatchRequest, opts ...grpc.CallOption) (*MatchReply, error)
}

type matchServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewMatchServiceClient(cc grpc.ClientConnInterface) MatchServiceClient {
	return &matchServiceClient{cc}
}

func (c *matchServiceClient) FindMatch(ctx context.Context, in *FindMatchRequest, opts ...grpc.CallOption) (*MatchReply, error) {
	out := new(MatchReply)
	if err := c.cc.Invoke(ctx, MatchService_FindMatch_FullMethodName, in, out, append([]grpc.CallOption{JSON()}, opts...)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *matchServiceClient) GetCurrentMatch(ctx context.Context, in *GetCurrentMatchRequest, opts ...grpc.CallOption) (*MatchReply, error) {
	out := new(MatchReply)
	if err := c.cc.Invoke(ctx, MatchService_GetCurrentMatch_FullMethodName, in, out, append([]grpc.CallOption{JSON()}, opts...)...); err != nil {
		return nil, err
	}
	return out, nil
}
