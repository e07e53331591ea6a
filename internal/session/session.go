// Package session holds the in-memory vault session: a two-state machine
// (Locked, Unlocked(key)) that owns the only copy of the vault key.
//
// The key never leaves the session. Code that needs it runs inside WithKey,
// which checks the state at the moment of use, so a Lock between an earlier
// IsUnlocked check and the actual encryption is always observed.
package session

import (
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/cryptox"
)

// State of a Session.
type State int

const (
	Locked State = iota
	Unlocked
)

func (s State) String() string {
	if s == Unlocked {
		return "unlocked"
	}
	return "locked"
}

// Option configures a Session.
type Option func(*Session)

// WithIdleTimeout locks the session after d without any key use. Zero
// disables auto-lock.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Session) { s.idle = d }
}

// Session is safe for concurrent use. Inject a fresh one per vault (and per
// test); there is no package-level instance.
type Session struct {
	mu  sync.RWMutex
	key []byte
	kcv []byte

	idle    time.Duration
	timerMu sync.Mutex
	timer   *time.Timer
}

// New returns a locked session.
func New(opts ...Option) *Session {
	s := &Session{}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Install moves the session to Unlocked with a copy of key. Any previous key
// is wiped first. The caller may wipe its own slice afterwards.
func (s *Session) Install(key []byte) error {
	if len(key) != cryptox.KeySize {
		return fmt.Errorf("vault key must be %d bytes, got %d", cryptox.KeySize, len(key))
	}

	s.mu.Lock()
	common.WipeByteArray(s.key)
	s.key = common.CloneBytes(key)
	s.kcv = cryptox.KeyCheckValue(s.key)
	s.mu.Unlock()

	s.touch()
	return nil
}

// Lock discards the key immediately. Locking a locked session is a no-op.
func (s *Session) Lock() {
	s.mu.Lock()
	common.WipeByteArray(s.key)
	s.key = nil
	s.kcv = nil
	s.mu.Unlock()

	s.stopTimer()
}

// IsUnlocked reports whether a key is installed.
func (s *Session) IsUnlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key != nil
}

// State returns the current state.
func (s *Session) State() State {
	if s.IsUnlocked() {
		return Unlocked
	}
	return Locked
}

// WithKey runs fn with the vault key, or fails with common.ErrVaultLocked
// without calling fn. The key is valid only for the duration of fn and must
// not be retained. A concurrent Lock waits for fn to return. fn must not
// call back into the session.
func (s *Session) WithKey(fn func(key []byte) error) error {
	s.mu.RLock()
	if s.key == nil {
		s.mu.RUnlock()
		return common.ErrVaultLocked
	}
	err := fn(s.key)
	s.mu.RUnlock()

	s.touch()
	return err
}

// CheckIntegrity recomputes the fingerprint of the installed key. When the
// key no longer matches the fingerprint taken at Install the session locks
// itself and false is returned. A locked session reports false.
func (s *Session) CheckIntegrity() bool {
	s.mu.RLock()
	if s.key == nil {
		s.mu.RUnlock()
		return false
	}
	ok := subtle.ConstantTimeCompare(cryptox.KeyCheckValue(s.key), s.kcv) == 1
	s.mu.RUnlock()

	if !ok {
		s.Lock()
	}
	return ok
}

func (s *Session) touch() {
	if s.idle <= 0 {
		return
	}
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.timer == nil {
		s.timer = time.AfterFunc(s.idle, s.Lock)
		return
	}
	s.timer.Reset(s.idle)
}

func (s *Session) stopTimer() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
