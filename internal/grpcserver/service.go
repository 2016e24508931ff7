package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "scholarship.v1.Catalog"

// Full method names.
const (
	MethodBrowse = "/" + ServiceName + "/Browse"
	MethodSearch = "/" + ServiceName + "/Search"
	MethodStats  = "/" + ServiceName + "/Stats"
)

// CatalogServer is the server API of scholarship.v1.Catalog. Requests and
// responses are google.protobuf.Struct documents.
type CatalogServer interface {
	Browse(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Search(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Stats(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type call func(CatalogServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name, fullMethod string, fn call) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return fn(srv.(CatalogServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return fn(srv.(CatalogServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes scholarship.v1.Catalog for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Browse", MethodBrowse, CatalogServer.Browse),
		unary("Search", MethodSearch, CatalogServer.Search),
		unary("Stats", MethodStats, CatalogServer.Stats),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "scholarship/v1/catalog.proto",
}

// Register attaches srv to s.
func Register(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls scholarship.v1.Catalog.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Browse lists every open scholarship.
func (c *Client) Browse(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodBrowse, req, opts...)
}

// Search filters by the gpa, income and residence fields of req.
func (c *Client) Search(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodSearch, req, opts...)
}

// Stats returns catalog counts.
func (c *Client) Stats(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodStats, req, opts...)
}
