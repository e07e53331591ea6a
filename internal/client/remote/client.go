package remote

import (
	"context"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/models"
	"github.com/dmitrijs2005/credvault/internal/repositories/accesslog"
	"github.com/dmitrijs2005/credvault/internal/repositories/entries"
	"github.com/dmitrijs2005/credvault/internal/repositories/masterkeys"
	"github.com/dmitrijs2005/credvault/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

type Client struct {
	conn        *grpc.ClientConn
	store       *rpc.StoreClient
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (c *Client) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if c.accessToken != "" {
		ctx = withAccessToken(ctx, c.accessToken)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// Dial connects to the store server at addr. Extra options are appended to
// the defaults, which use plaintext transport.
func Dial(addr, accessToken string, opts ...grpc.DialOption) (*Client, error) {
	c := &Client{accessToken: accessToken}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.store = rpc.NewStoreClient(conn)
	return c, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Ping reports the server status string.
func (c *Client) Ping(ctx context.Context) (string, error) {
	resp, err := c.store.Ping(ctx, &rpc.PingRequest{})
	if err != nil {
		return "", rpc.FromStatus(err)
	}
	return resp.Status, nil
}

func (c *Client) Entries() *EntryRepository        { return &EntryRepository{c.store} }
func (c *Client) MasterKeys() *MasterKeyRepository { return &MasterKeyRepository{c.store} }
func (c *Client) AccessLog() *AccessLogRepository  { return &AccessLogRepository{c.store} }

var (
	_ entries.Repository    = (*EntryRepository)(nil)
	_ masterkeys.Repository = (*MasterKeyRepository)(nil)
	_ accesslog.Repository  = (*AccessLogRepository)(nil)
)

type EntryRepository struct{ store *rpc.StoreClient }

func (r *EntryRepository) Insert(ctx context.Context, entry *models.CredentialEntry) (*models.CredentialEntry, error) {
	resp, err := r.store.InsertEntry(ctx, &rpc.InsertEntryRequest{Entry: entry})
	if err != nil {
		return nil, rpc.FromStatus(err)
	}
	return resp.Entry, nil
}

func (r *EntryRepository) GetByID(ctx context.Context, id string) (*models.CredentialEntry, error) {
	resp, err := r.store.GetEntry(ctx, &rpc.GetEntryRequest{ID: id})
	if err != nil {
		return nil, rpc.FromStatus(err)
	}
	return resp.Entry, nil
}

func (r *EntryRepository) List(ctx context.Context) ([]*models.CredentialEntry, error) {
	resp, err := r.store.ListEntries(ctx, &rpc.ListEntriesRequest{})
	if err != nil {
		return nil, rpc.FromStatus(err)
	}
	return resp.Entries, nil
}

func (r *EntryRepository) Update(ctx context.Context, entry *models.CredentialEntry) error {
	_, err := r.store.UpdateEntry(ctx, &rpc.UpdateEntryRequest{Entry: entry})
	return rpc.FromStatus(err)
}

func (r *EntryRepository) Delete(ctx context.Context, id string) error {
	_, err := r.store.DeleteEntry(ctx, &rpc.DeleteEntryRequest{ID: id})
	return rpc.FromStatus(err)
}

// MasterKeyRepository addresses the token principal's record; the principal
// id arguments are not sent.
type MasterKeyRepository struct{ store *rpc.StoreClient }

func (r *MasterKeyRepository) Get(ctx context.Context, _ string) (*models.MasterKeyRecord, error) {
	resp, err := r.store.GetMasterKey(ctx, &rpc.GetMasterKeyRequest{})
	if err != nil {
		return nil, rpc.FromStatus(err)
	}
	return resp.Record, nil
}

func (r *MasterKeyRepository) Upsert(ctx context.Context, rec *models.MasterKeyRecord) error {
	_, err := r.store.PutMasterKey(ctx, &rpc.PutMasterKeyRequest{Record: rec})
	return rpc.FromStatus(err)
}

func (r *MasterKeyRepository) InsertIfAbsent(ctx context.Context, rec *models.MasterKeyRecord) (bool, error) {
	resp, err := r.store.PutMasterKey(ctx, &rpc.PutMasterKeyRequest{Record: rec, IfAbsent: true})
	if err != nil {
		return false, rpc.FromStatus(err)
	}
	return resp.Written, nil
}

type AccessLogRepository struct{ store *rpc.StoreClient }

func (r *AccessLogRepository) Append(ctx context.Context, e *models.AccessLogEntry) error {
	resp, err := r.store.AppendAccessLog(ctx, &rpc.AppendAccessLogRequest{Entry: e})
	if err != nil {
		return rpc.FromStatus(err)
	}
	e.ID = resp.ID
	return nil
}

func (r *AccessLogRepository) List(ctx context.Context, entryID string) ([]*models.AccessLogEntry, error) {
	resp, err := r.store.ListAccessLog(ctx, &rpc.ListAccessLogRequest{EntryID: entryID})
	if err != nil {
		return nil, rpc.FromStatus(err)
	}
	return resp.Entries, nil
}
