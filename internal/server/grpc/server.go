// Package grpc exposes services.StoreService as the StoreService gRPC API.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/models"
	"github.com/dmitrijs2005/credvault/internal/rpc"
	"google.golang.org/grpc"
)

// storeService is the subset of services.StoreService the handlers use.
type storeService interface {
	GetMasterKey(ctx context.Context, principal string) (*models.MasterKeyRecord, error)
	PutMasterKey(ctx context.Context, principal string, rec *models.MasterKeyRecord, ifAbsent bool) (bool, error)
	InsertEntry(ctx context.Context, principal string, e *models.CredentialEntry) (*models.CredentialEntry, error)
	GetEntry(ctx context.Context, id string) (*models.CredentialEntry, error)
	ListEntries(ctx context.Context) ([]*models.CredentialEntry, error)
	UpdateEntry(ctx context.Context, principal string, e *models.CredentialEntry) error
	DeleteEntry(ctx context.Context, id string) error
	AppendAccessLog(ctx context.Context, principal string, e *models.AccessLogEntry) (int64, error)
	ListAccessLog(ctx context.Context, entryID string) ([]*models.AccessLogEntry, error)
	Ping(ctx context.Context) error
}

type GRPCServer struct {
	address   string
	store     storeService
	logger    logging.Logger
	jwtSecret []byte
}

var _ rpc.StoreServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, store storeService, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		store:     store,
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	rpc.RegisterStoreServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	if err != nil {
		s.logger.Warn(ctx, "request failed", "method", info.FullMethod, "duration", time.Since(start), "error", err)
	} else {
		s.logger.Debug(ctx, "request served", "method", info.FullMethod, "duration", time.Since(start))
	}
	return resp, err
}
