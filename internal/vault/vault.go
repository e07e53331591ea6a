// Package vault is the API the UI layer talks to. It ties together the master
// key lifecycle, the in-memory session, the sealer, the ciphertext store and
// the access audit log.
//
// Operations that touch plaintext (create, decrypt, update, delete) require
// an unlocked session and never write to the store while it is locked.
// Listing and reading metadata never decrypt.
package vault

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/credvault/internal/cryptox"
	"github.com/dmitrijs2005/credvault/internal/identity"
	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/models"
	"github.com/dmitrijs2005/credvault/internal/sealer"
	"github.com/dmitrijs2005/credvault/internal/session"
	"golang.org/x/time/rate"
)

// Auditor is implemented by *audit.Recorder. Neither method reports errors.
type Auditor interface {
	Record(ctx context.Context, entryID, principalID string, action models.AccessAction, entryName string)
	RecordNow(ctx context.Context, entryID, principalID string, action models.AccessAction, entryName string)
}

type Config struct {
	// Params is the Argon2id cost used for new master key records.
	Params cryptox.Params
	// SingleSetup makes a second setup for the same principal fail with
	// common.ErrAlreadyConfigured instead of replacing the record.
	SingleSetup bool
	// MinPasswordScore is the minimum zxcvbn score (0..4) of a new master
	// password. Zero only rejects empty passwords.
	MinPasswordScore int
	// UnlockRate and UnlockBurst throttle unlock attempts. A zero rate
	// disables throttling.
	UnlockRate  rate.Limit
	UnlockBurst int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Params:           cryptox.DefaultParams(),
		SingleSetup:      true,
		MinPasswordScore: 2,
		UnlockRate:       rate.Every(2 * time.Second),
		UnlockBurst:      5,
	}
}

type Vault struct {
	store    Store
	sess     *session.Session
	sealer   *sealer.Sealer
	identity identity.Provider
	audit    Auditor
	logger   logging.Logger
	cfg      Config

	// keyMu serialises setup, change and unlock so the installed key always
	// matches the committed master key record.
	keyMu   sync.Mutex
	limiter *rate.Limiter
	now     func() time.Time
}

// New builds a vault over store. The session starts (and stays) owned by the
// vault; pass a fresh one.
func New(store Store, sess *session.Session, id identity.Provider, auditor Auditor, logger logging.Logger, cfg Config) *Vault {
	limit, burst := cfg.UnlockRate, cfg.UnlockBurst
	if limit <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &Vault{
		store:    store,
		sess:     sess,
		sealer:   sealer.New(sess),
		identity: id,
		audit:    auditor,
		logger:   logger.With("module", "vault"),
		cfg:      cfg,
		limiter:  rate.NewLimiter(limit, burst),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Lock wipes the vault key.
func (v *Vault) Lock() {
	v.sess.Lock()
	v.logger.Info(context.Background(), "vault locked")
}

func (v *Vault) IsUnlocked() bool {
	return v.sess.IsUnlocked()
}

func (v *Vault) State() session.State {
	return v.sess.State()
}
