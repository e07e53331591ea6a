// Package rpc defines the credvault.store.v1.StoreService gRPC API: the
// ciphertext-only store the vault can use instead of a local database.
// Requests and responses are Go structs that travel as store.proto
// messages over gRPC's protobuf codec.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

const ServiceName = "credvault.store.v1.StoreService"

// FullMethod returns the gRPC method path of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// StoreServer is implemented by the store server.
type StoreServer interface {
	GetMasterKey(context.Context, *GetMasterKeyRequest) (*MasterKeyResponse, error)
	PutMasterKey(context.Context, *PutMasterKeyRequest) (*PutMasterKeyResponse, error)
	InsertEntry(context.Context, *InsertEntryRequest) (*EntryResponse, error)
	GetEntry(context.Context, *GetEntryRequest) (*EntryResponse, error)
	ListEntries(context.Context, *ListEntriesRequest) (*ListEntriesResponse, error)
	UpdateEntry(context.Context, *UpdateEntryRequest) (*emptypb.Empty, error)
	DeleteEntry(context.Context, *DeleteEntryRequest) (*emptypb.Empty, error)
	AppendAccessLog(context.Context, *AppendAccessLogRequest) (*AppendAccessLogResponse, error)
	ListAccessLog(context.Context, *ListAccessLogRequest) (*ListAccessLogResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

// unary adapts a typed StoreServer method to a grpc.MethodDesc. Interceptors
// see the Go request; the response is converted to its wire message.
func unary[Req any, PReq interface {
	*Req
	wireMessage
}, Resp any](method string, call func(StoreServer, context.Context, PReq) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := PReq(new(Req))
			wire := newWire(in.protoName())
			if err := dec(wire); err != nil {
				return nil, status.Error(codes.InvalidArgument, err.Error())
			}
			in.decode(wire)

			handler := func(ctx context.Context, req any) (any, error) {
				resp, err := call(srv.(StoreServer), ctx, req.(PReq))
				if err != nil {
					return nil, err
				}
				return responseWire(resp), nil
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func responseWire(resp any) any {
	if w, ok := resp.(wireMessage); ok {
		return toWire(w)
	}
	return resp
}

var StoreServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StoreServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetMasterKey", StoreServer.GetMasterKey),
		unary("PutMasterKey", StoreServer.PutMasterKey),
		unary("InsertEntry", StoreServer.InsertEntry),
		unary("GetEntry", StoreServer.GetEntry),
		unary("ListEntries", StoreServer.ListEntries),
		unary("UpdateEntry", StoreServer.UpdateEntry),
		unary("DeleteEntry", StoreServer.DeleteEntry),
		unary("AppendAccessLog", StoreServer.AppendAccessLog),
		unary("ListAccessLog", StoreServer.ListAccessLog),
		unary("Ping", StoreServer.Ping),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: protoPath,
}

func RegisterStoreServer(s grpc.ServiceRegistrar, srv StoreServer) {
	s.RegisterService(&StoreServiceDesc, srv)
}

// StoreClient calls StoreService over cc.
type StoreClient struct {
	cc grpc.ClientConnInterface
}

func NewStoreClient(cc grpc.ClientConnInterface) *StoreClient {
	return &StoreClient{cc: cc}
}

func invoke[Resp any, PResp interface {
	*Resp
	wireMessage
}](ctx context.Context, cc grpc.ClientConnInterface, method string, in wireMessage, opts []grpc.CallOption) (*Resp, error) {
	out := PResp(new(Resp))
	reply := newWire(out.protoName())
	if err := cc.Invoke(ctx, FullMethod(method), toWire(in), reply, opts...); err != nil {
		return nil, err
	}
	out.decode(reply)
	return out, nil
}

func invokeEmpty(ctx context.Context, cc grpc.ClientConnInterface, method string, in wireMessage, opts []grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := cc.Invoke(ctx, FullMethod(method), toWire(in), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StoreClient) GetMasterKey(ctx context.Context, in *GetMasterKeyRequest, opts ...grpc.CallOption) (*MasterKeyResponse, error) {
	return invoke[MasterKeyResponse](ctx, c.cc, "GetMasterKey", in, opts)
}

func (c *StoreClient) PutMasterKey(ctx context.Context, in *PutMasterKeyRequest, opts ...grpc.CallOption) (*PutMasterKeyResponse, error) {
	return invoke[PutMasterKeyResponse](ctx, c.cc, "PutMasterKey", in, opts)
}

func (c *StoreClient) InsertEntry(ctx context.Context, in *InsertEntryRequest, opts ...grpc.CallOption) (*EntryResponse, error) {
	return invoke[EntryResponse](ctx, c.cc, "InsertEntry", in, opts)
}

func (c *StoreClient) GetEntry(ctx context.Context, in *GetEntryRequest, opts ...grpc.CallOption) (*EntryResponse, error) {
	return invoke[EntryResponse](ctx, c.cc, "GetEntry", in, opts)
}

func (c *StoreClient) ListEntries(ctx context.Context, in *ListEntriesRequest, opts ...grpc.CallOption) (*ListEntriesResponse, error) {
	return invoke[ListEntriesResponse](ctx, c.cc, "ListEntries", in, opts)
}

func (c *StoreClient) UpdateEntry(ctx context.Context, in *UpdateEntryRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invokeEmpty(ctx, c.cc, "UpdateEntry", in, opts)
}

func (c *StoreClient) DeleteEntry(ctx context.Context, in *DeleteEntryRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invokeEmpty(ctx, c.cc, "DeleteEntry", in, opts)
}

func (c *StoreClient) AppendAccessLog(ctx context.Context, in *AppendAccessLogRequest, opts ...grpc.CallOption) (*AppendAccessLogResponse, error) {
	return invoke[AppendAccessLogResponse](ctx, c.cc, "AppendAccessLog", in, opts)
}

func (c *StoreClient) ListAccessLog(ctx context.Context, in *ListAccessLogRequest, opts ...grpc.CallOption) (*ListAccessLogResponse, error) {
	return invoke[ListAccessLogResponse](ctx, c.cc, "ListAccessLog", in, opts)
}

func (c *StoreClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, "Ping", in, opts)
}
