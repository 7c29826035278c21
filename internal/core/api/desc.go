package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "vizcore.style.v1.StyleAPI"

// Method names of the style API.
const (
	MethodEvaluateTable   = "EvaluateTable"
	MethodBuildHierarchy  = "BuildHierarchy"
	MethodRenderChart     = "RenderChart"
	MethodListContainers  = "ListContainers"
	MethodRemoveContainer = "RemoveContainer"
	MethodCloseSession    = "CloseSession"
	MethodListTables      = "ListTables"
	MethodDescribeTable   = "DescribeTable"
	MethodQueryDataset    = "QueryDataset"
)

// FullMethod returns the gRPC path of a style API method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// StyleAPIServer is the server API for the style service. Every message is
// a google.protobuf.Struct.
type StyleAPIServer interface {
	EvaluateTable(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BuildHierarchy(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RenderChart(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListContainers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveContainer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CloseSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTables(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DescribeTable(context.Context, *structpb.Struct) (*structpb.Struct, error)
	QueryDataset(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var _ StyleAPIServer = (*StyleAPIService)(nil)

type unaryMethod func(StyleAPIServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(StyleAPIServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(StyleAPIServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the style service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StyleAPIServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodEvaluateTable, StyleAPIServer.EvaluateTable),
		unary(MethodBuildHierarchy, StyleAPIServer.BuildHierarchy),
		unary(MethodRenderChart, StyleAPIServer.RenderChart),
		unary(MethodListContainers, StyleAPIServer.ListContainers),
		unary(MethodRemoveContainer, StyleAPIServer.RemoveContainer),
		unary(MethodCloseSession, StyleAPIServer.CloseSession),
		unary(MethodListTables, StyleAPIServer.ListTables),
		unary(MethodDescribeTable, StyleAPIServer.DescribeTable),
		unary(MethodQueryDataset, StyleAPIServer.QueryDataset),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vizcore/style/v1/style_api.proto",
}

// RegisterStyleAPIServer registers srv with s.
func RegisterStyleAPIServer(s grpc.ServiceRegistrar, srv StyleAPIServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// StyleAPIClient calls the style service over a client connection.
type StyleAPIClient struct {
	cc grpc.ClientConnInterface
}

// NewStyleAPIClient wraps cc.
func NewStyleAPIClient(cc grpc.ClientConnInterface) *StyleAPIClient {
	return &StyleAPIClient{cc: cc}
}

// Call invokes a style API method by name.
func (c *StyleAPIClient) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
