package grpc

import (
	"context"

	"github.com/dmitrijs2005/credvault/internal/metrics"
	"github.com/dmitrijs2005/credvault/internal/rpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

// done records the outcome of a store operation and maps err to a status.
func (s *GRPCServer) done(ctx context.Context, op string, err error) error {
	metrics.ObserveOperation("store."+op, err)
	if err != nil {
		s.logger.Debug(ctx, "store operation failed", "operation", op, "error", err)
	}
	return rpc.ToStatus(err)
}

func (s *GRPCServer) GetMasterKey(ctx context.Context, req *rpc.GetMasterKeyRequest) (*rpc.MasterKeyResponse, error) {
	principal, err := principalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := s.store.GetMasterKey(ctx, principal)
	if err != nil {
		return nil, s.done(ctx, "get_master_key", err)
	}
	s.done(ctx, "get_master_key", nil)
	return &rpc.MasterKeyResponse{Record: rec}, nil
}

func (s *GRPCServer) PutMasterKey(ctx context.Context, req *rpc.PutMasterKeyRequest) (*rpc.PutMasterKeyResponse, error) {
	principal, err := principalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	written, err := s.store.PutMasterKey(ctx, principal, req.Record, req.IfAbsent)
	if err != nil {
		return nil, s.done(ctx, "put_master_key", err)
	}
	s.done(ctx, "put_master_key", nil)
	s.logger.Info(ctx, "master key record stored", "principal", principal, "written", written)
	return &rpc.PutMasterKeyResponse{Written: written}, nil
}

func (s *GRPCServer) InsertEntry(ctx context.Context, req *rpc.InsertEntryRequest) (*rpc.EntryResponse, error) {
	principal, err := principalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	e, err := s.store.InsertEntry(ctx, principal, req.Entry)
	if err != nil {
		return nil, s.done(ctx, "insert_entry", err)
	}
	s.done(ctx, "insert_entry", nil)
	return &rpc.EntryResponse{Entry: e}, nil
}

func (s *GRPCServer) GetEntry(ctx context.Context, req *rpc.GetEntryRequest) (*rpc.EntryResponse, error) {
	e, err := s.store.GetEntry(ctx, req.ID)
	if err != nil {
		return nil, s.done(ctx, "get_entry", err)
	}
	s.done(ctx, "get_entry", nil)
	return &rpc.EntryResponse{Entry: e}, nil
}

func (s *GRPCServer) ListEntries(ctx context.Context, req *rpc.ListEntriesRequest) (*rpc.ListEntriesResponse, error) {
	list, err := s.store.ListEntries(ctx)
	if err != nil {
		return nil, s.done(ctx, "list_entries", err)
	}
	s.done(ctx, "list_entries", nil)
	return &rpc.ListEntriesResponse{Entries: list}, nil
}

func (s *GRPCServer) UpdateEntry(ctx context.Context, req *rpc.UpdateEntryRequest) (*emptypb.Empty, error) {
	principal, err := principalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.done(ctx, "update_entry", s.store.UpdateEntry(ctx, principal, req.Entry)); err != nil {
		return nil, err
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) DeleteEntry(ctx context.Context, req *rpc.DeleteEntryRequest) (*emptypb.Empty, error) {
	if err := s.done(ctx, "delete_entry", s.store.DeleteEntry(ctx, req.ID)); err != nil {
		return nil, err
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) AppendAccessLog(ctx context.Context, req *rpc.AppendAccessLogRequest) (*rpc.AppendAccessLogResponse, error) {
	principal, err := principalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	id, err := s.store.AppendAccessLog(ctx, principal, req.Entry)
	if err != nil {
		return nil, s.done(ctx, "append_access_log", err)
	}
	s.done(ctx, "append_access_log", nil)
	return &rpc.AppendAccessLogResponse{ID: id}, nil
}

func (s *GRPCServer) ListAccessLog(ctx context.Context, req *rpc.ListAccessLogRequest) (*rpc.ListAccessLogResponse, error) {
	list, err := s.store.ListAccessLog(ctx, req.EntryID)
	if err != nil {
		return nil, s.done(ctx, "list_access_log", err)
	}
	s.done(ctx, "list_access_log", nil)
	return &rpc.ListAccessLogResponse{Entries: list}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *rpc.PingRequest) (*rpc.PingResponse, error) {
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Error(ctx, "database ping failed", "error", err)
		return &rpc.PingResponse{Status: "DEGRADED"}, nil
	}
	return &rpc.PingResponse{Status: "OK"}, nil
}
