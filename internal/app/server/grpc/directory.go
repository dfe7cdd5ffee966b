package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified name of the link directory service.
// Messages are protobuf well-known types, so no generated code is needed
// on either side.
const ServiceName = "linkshort.v1.LinkDirectory"

// LinkDirectoryServer is the server API of the link directory.
type LinkDirectoryServer interface {
	// Create takes {"url": ..., "code": ...} and returns the created link.
	Create(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Get(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	// List returns every link, newest first.
	List(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	Delete(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	// Redirect resolves a code to its target and counts the click.
	Redirect(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
}

// LinkDirectoryServiceDesc describes the service for grpc.Server.RegisterService.
var LinkDirectoryServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LinkDirectoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Create", Handler: unaryHandler("Create", LinkDirectoryServer.Create)},
		{MethodName: "Get", Handler: unaryHandler("Get", LinkDirectoryServer.Get)},
		{MethodName: "List", Handler: unaryHandler("List", LinkDirectoryServer.List)},
		{MethodName: "Delete", Handler: unaryHandler("Delete", LinkDirectoryServer.Delete)},
		{MethodName: "Redirect", Handler: unaryHandler("Redirect", LinkDirectoryServer.Redirect)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "linkshort/v1/directory.proto",
}

// RegisterLinkDirectoryServer registers srv on s.
func RegisterLinkDirectoryServer(s grpc.ServiceRegistrar, srv LinkDirectoryServer) {
	s.RegisterService(&LinkDirectoryServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler[Req, Resp any](method string, call func(LinkDirectoryServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	name := fullMethod(method)

	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LinkDirectoryServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: name,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LinkDirectoryServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// LinkDirectoryClient is the client API of the link directory.
type LinkDirectoryClient struct {
	cc grpc.ClientConnInterface
}

func NewLinkDirectoryClient(cc grpc.ClientConnInterface) *LinkDirectoryClient {
	return &LinkDirectoryClient{cc: cc}
}

func (c *LinkDirectoryClient) Create(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("Create"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LinkDirectoryClient) Get(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("Get"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LinkDirectoryClient) List(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, fullMethod("List"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LinkDirectoryClient) Delete(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, fullMethod("Delete"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LinkDirectoryClient) Redirect(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, fullMethod("Redirect"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
