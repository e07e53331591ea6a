package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/credvault/internal/auth"
	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/cryptox"
	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/models"
	"github.com/dmitrijs2005/credvault/internal/repositories/repomanager"
	"github.com/dmitrijs2005/credvault/internal/rpc"
	"github.com/dmitrijs2005/credvault/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

const testSecret = "secret"

func newStore(t *testing.T) *services.StoreService {
	t.Helper()
	db, err := repomanager.Open(repomanager.SQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	m, err := repomanager.NewSQLRepositoryManager(repomanager.SQLite)
	require.NoError(t, err)
	require.NoError(t, m.RunMigrations(context.Background(), db))
	return services.NewStoreService(db, m)
}

// dial starts srv on an in-memory listener and returns a client for it.
func dial(t *testing.T, srv *GRPCServer) *rpc.StoreClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return rpc.NewStoreClient(conn)
}

func withToken(t *testing.T, userID string, validity time.Duration) context.Context {
	t.Helper()
	token, err := auth.GenerateToken(userID, []byte(testSecret), validity)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, token)
}

func TestStoreService_RoundTrip(t *testing.T) {
	client := dial(t, NewGRPCServer("", nopLogger{}, newStore(t), testSecret))
	ctx := withToken(t, "ops-1", time.Minute)

	put, err := client.PutMasterKey(ctx, &rpc.PutMasterKeyRequest{
		Record:   &models.MasterKeyRecord{Verifier: []byte("v"), Salt: []byte("s")},
		IfAbsent: true,
	})
	require.NoError(t, err)
	assert.True(t, put.Written)

	mk, err := client.GetMasterKey(ctx, &rpc.GetMasterKeyRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ops-1", mk.Record.PrincipalID)
	assert.Equal(t, []byte("s"), mk.Record.Salt)

	ins, err := client.InsertEntry(ctx, &rpc.InsertEntryRequest{Entry: &models.CredentialEntry{
		Kind:       models.EntryKindServiceAccount,
		Name:       "Payroll API",
		Ciphertext: []byte{1, 2, 3},
		Nonce:      make([]byte, cryptox.NonceSize),
	}})
	require.NoError(t, err)
	require.NotEmpty(t, ins.Entry.ID)
	assert.Equal(t, "ops-1", ins.Entry.CreatedBy)

	list, err := client.ListEntries(ctx, &rpc.ListEntriesRequest{})
	require.NoError(t, err)
	require.Len(t, list.Entries, 1)
	assert.Equal(t, []byte{1, 2, 3}, list.Entries[0].Ciphertext)

	app, err := client.AppendAccessLog(ctx, &rpc.AppendAccessLogRequest{Entry: &models.AccessLogEntry{
		EntryID: ins.Entry.ID, Action: models.ActionViewed, EntryName: "Payroll API",
	}})
	require.NoError(t, err)
	assert.NotZero(t, app.ID)

	log, err := client.ListAccessLog(ctx, &rpc.ListAccessLogRequest{EntryID: ins.Entry.ID})
	require.NoError(t, err)
	require.Len(t, log.Entries, 1)
	assert.Equal(t, "ops-1", log.Entries[0].PrincipalID)

	_, err = client.DeleteEntry(ctx, &rpc.DeleteEntryRequest{ID: ins.Entry.ID})
	require.NoError(t, err)

	_, err = client.GetEntry(ctx, &rpc.GetEntryRequest{ID: ins.Entry.ID})
	assert.Equal(t, codes.NotFound, status.Code(err))
	require.ErrorIs(t, rpc.FromStatus(err), common.ErrorNotFound)
}

func TestStoreService_Auth(t *testing.T) {
	client := dial(t, NewGRPCServer("", nopLogger{}, newStore(t), testSecret))

	ping, err := client.Ping(context.Background(), &rpc.PingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "OK", ping.Status)

	_, err = client.ListEntries(context.Background(), &rpc.ListEntriesRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = client.ListEntries(withToken(t, "ops-1", -time.Minute), &rpc.ListEntriesRequest{})
	require.ErrorIs(t, rpc.FromStatus(err), common.ErrTokenExpired)

	forged, err := auth.GenerateToken("ops-1", []byte("other"), time.Minute)
	require.NoError(t, err)
	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, forged)
	_, err = client.ListEntries(ctx, &rpc.ListEntriesRequest{})
	require.ErrorIs(t, rpc.FromStatus(err), common.ErrorUnauthorized)
}

func TestStoreService_Validation(t *testing.T) {
	client := dial(t, NewGRPCServer("", nopLogger{}, newStore(t), testSecret))
	ctx := withToken(t, "ops-1", time.Minute)

	_, err := client.InsertEntry(ctx, &rpc.InsertEntryRequest{Entry: &models.CredentialEntry{Name: "x"}})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	require.ErrorIs(t, rpc.FromStatus(err), common.ErrorValidation)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", nopLogger{}, nil, testSecret)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", nopLogger{}, nil, testSecret)
	require.Error(t, srv.Run(context.Background()))
}
