package handler

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "omnipos.catalog.v1.CatalogQueueService"

// CatalogQueueServer is the server API of the catalog queue service. Requests and responses
// are google.protobuf.Struct documents whose fields follow the JSON shapes in this package.
type CatalogQueueServer interface {
	CreateQueueItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetQueueItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListQueueItems(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EditQueueItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RevalidateQueueItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PublishQueueItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DiscardQueueItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UploadMedia(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BulkUpdateSizing(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListCatalogProducts(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListSizingCategories(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EditCatalogProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteCatalogProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(CatalogQueueServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func method(name string, fn unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(CatalogQueueServer)
			if interceptor == nil {
				return fn(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return fn(s, ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var CatalogQueueServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogQueueServer)(nil),
	Methods: []grpc.MethodDesc{
		method("CreateQueueItem", CatalogQueueServer.CreateQueueItem),
		method("GetQueueItem", CatalogQueueServer.GetQueueItem),
		method("ListQueueItems", CatalogQueueServer.ListQueueItems),
		method("EditQueueItem", CatalogQueueServer.EditQueueItem),
		method("RevalidateQueueItem", CatalogQueueServer.RevalidateQueueItem),
		method("PublishQueueItem", CatalogQueueServer.PublishQueueItem),
		method("DiscardQueueItem", CatalogQueueServer.DiscardQueueItem),
		method("UploadMedia", CatalogQueueServer.UploadMedia),
		method("BulkUpdateSizing", CatalogQueueServer.BulkUpdateSizing),
		method("ListCatalogProducts", CatalogQueueServer.ListCatalogProducts),
		method("ListSizingCategories", CatalogQueueServer.ListSizingCategories),
		method("EditCatalogProduct", CatalogQueueServer.EditCatalogProduct),
		method("DeleteCatalogProduct", CatalogQueueServer.DeleteCatalogProduct),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/catalog/v1/catalog_queue.proto",
}

func RegisterCatalogQueueServiceServer(s grpc.ServiceRegistrar, srv CatalogQueueServer) {
	s.RegisterService(&CatalogQueueServiceDesc, srv)
}

// Client calls the service with JSON-shaped requests, e.g. from other services or tools.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with req encoded as a Struct and decodes the response into resp when it is non-nil.
func (c *Client) Call(ctx context.Context, method string, req any, resp any, opts ...grpc.CallOption) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return err
	}
	if resp == nil {
		return nil
	}
	return fromStruct(out, resp)
}

func toStruct(v any) (*structpb.Struct, error) {
	if v == nil {
		return &structpb.Struct{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := new(structpb.Struct)
	if err := protojson.Unmarshal(b, s); err != nil {
		return nil, err
	}
	return s, nil
}

func fromStruct(s *structpb.Struct, dst any) error {
	b, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// decode reads a request document into dst, reporting shape errors as InvalidArgument.
func decode(s *structpb.Struct, dst any) error {
	if err := fromStruct(s, dst); err != nil {
		return status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
	}
	return nil
}
