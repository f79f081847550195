// Package remote serves a session over gRPC: one unary method takes a
// command line and returns the outputs it produced.
package remote

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "narsvm.Reasoner"

const executeMethod = "/" + ServiceName + "/Execute"

// #region interfaces

// ReasonerServer is the server side of narsvm.Reasoner.
type ReasonerServer interface {
	Execute(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// ReasonerClient is the client side of narsvm.Reasoner.
type ReasonerClient interface {
	Execute(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

// #endregion interfaces

// #region descriptor

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReasonerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Execute", Handler: executeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "narsvm/reasoner.proto",
}

// RegisterReasonerServer attaches srv to a gRPC server.
func RegisterReasonerServer(s grpc.ServiceRegistrar, srv ReasonerServer) {
	s.RegisterService(&serviceDesc, srv)
}

func executeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReasonerServer).Execute(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: executeMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReasonerServer).Execute(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

type reasonerClient struct {
	cc grpc.ClientConnInterface
}

// NewReasonerClient returns a stub over cc.
func NewReasonerClient(cc grpc.ClientConnInterface) ReasonerClient {
	return &reasonerClient{cc: cc}
}

func (c *reasonerClient) Execute(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, executeMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// #endregion descriptor
