package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// GiftCardServiceName gRPCサービス名
const GiftCardServiceName = "giftkeeper.v1.GiftCardService"

// メソッドのフルネーム
const (
	GiftCardService_List_FullMethodName    = "/" + GiftCardServiceName + "/List"
	GiftCardService_Add_FullMethodName     = "/" + GiftCardServiceName + "/Add"
	GiftCardService_Update_FullMethodName  = "/" + GiftCardServiceName + "/Update"
	GiftCardService_Delete_FullMethodName  = "/" + GiftCardServiceName + "/Delete"
	GiftCardService_Summary_FullMethodName = "/" + GiftCardServiceName + "/Summary"
	GiftCardService_Export_FullMethodName  = "/" + GiftCardServiceName + "/Export"
)

// GiftCardServiceServer ギフトカードサービスのサーバーインターフェース
// リクエストとレスポンスはgoogle.protobuf.Structで表す
type GiftCardServiceServer interface {
	List(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Add(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Update(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Delete(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Summary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Export(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type structMethod func(GiftCardServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call structMethod) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(GiftCardServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(GiftCardServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// GiftCardService_ServiceDesc ギフトカードサービスのServiceDesc
var GiftCardService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: GiftCardServiceName,
	HandlerType: (*GiftCardServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "List", Handler: unaryHandler(GiftCardService_List_FullMethodName, GiftCardServiceServer.List)},
		{MethodName: "Add", Handler: unaryHandler(GiftCardService_Add_FullMethodName, GiftCardServiceServer.Add)},
		{MethodName: "Update", Handler: unaryHandler(GiftCardService_Update_FullMethodName, GiftCardServiceServer.Update)},
		{MethodName: "Delete", Handler: unaryHandler(GiftCardService_Delete_FullMethodName, GiftCardServiceServer.Delete)},
		{MethodName: "Summary", Handler: unaryHandler(GiftCardService_Summary_FullMethodName, GiftCardServiceServer.Summary)},
		{MethodName: "Export", Handler: unaryHandler(GiftCardService_Export_FullMethodName, GiftCardServiceServer.Export)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "giftkeeper/v1/gift_card.proto",
}

// RegisterGiftCardServiceServer サーバーにギフトカードサービスを登録
func RegisterGiftCardServiceServer(s grpc.ServiceRegistrar, srv GiftCardServiceServer) {
	s.RegisterService(&GiftCardService_ServiceDesc, srv)
}

// GiftCardServiceClient ギフトカードサービスのクライアント
type GiftCardServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewGiftCardServiceClient 新しいGiftCardServiceClientを作成
func NewGiftCardServiceClient(cc grpc.ClientConnInterface) *GiftCardServiceClient {
	return &GiftCardServiceClient{cc: cc}
}

func (c *GiftCardServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GiftCardServiceClient) List(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GiftCardService_List_FullMethodName, in, opts...)
}

func (c *GiftCardServiceClient) Add(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GiftCardService_Add_FullMethodName, in, opts...)
}

func (c *GiftCardServiceClient) Update(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GiftCardService_Update_FullMethodName, in, opts...)
}

func (c *GiftCardServiceClient) Delete(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GiftCardService_Delete_FullMethodName, in, opts...)
}

func (c *GiftCardServiceClient) Summary(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GiftCardService_Summary_FullMethodName, in, opts...)
}

func (c *GiftCardServiceClient) Export(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GiftCardService_Export_FullMethodName, in, opts...)
}
