package session

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	return bytes.Repeat([]byte{0x42}, cryptox.KeySize)
}

func TestNew_StartsLocked(t *testing.T) {
	s := New()
	assert.False(t, s.IsUnlocked())
	assert.Equal(t, Locked, s.State())
	assert.Equal(t, "locked", s.State().String())
}

func TestWithKey_LockedFailsFastWithoutCallingFn(t *testing.T) {
	s := New()
	called := false
	err := s.WithKey(func([]byte) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, common.ErrVaultLocked)
	assert.False(t, called)
}

func TestInstall_CopiesKey(t *testing.T) {
	s := New()
	key := testKey()
	require.NoError(t, s.Install(key))
	common.WipeByteArray(key)

	require.NoError(t, s.WithKey(func(k []byte) error {
		assert.Equal(t, testKey(), k)
		return nil
	}))
	assert.Equal(t, "unlocked", s.State().String())
}

func TestInstall_RejectsBadLength(t *testing.T) {
	s := New()
	require.Error(t, s.Install([]byte("short")))
	assert.False(t, s.IsUnlocked())
}

func TestLock_WipesKey(t *testing.T) {
	s := New()
	require.NoError(t, s.Install(testKey()))

	held := s.key
	s.Lock()

	assert.False(t, s.IsUnlocked())
	assert.Nil(t, s.key)
	assert.Equal(t, make([]byte, cryptox.KeySize), held, "key bytes must be zeroed on lock")

	// idempotent
	s.Lock()
	assert.False(t, s.IsUnlocked())
}

func TestInstall_ReplacesAndWipesPreviousKey(t *testing.T) {
	s := New()
	require.NoError(t, s.Install(testKey()))
	old := s.key

	next := bytes.Repeat([]byte{0x07}, cryptox.KeySize)
	require.NoError(t, s.Install(next))

	assert.Equal(t, make([]byte, cryptox.KeySize), old)
	require.NoError(t, s.WithKey(func(k []byte) error {
		assert.Equal(t, next, k)
		return nil
	}))
}

func TestWithKey_PropagatesFnError(t *testing.T) {
	s := New()
	require.NoError(t, s.Install(testKey()))
	boom := errors.New("boom")
	require.ErrorIs(t, s.WithKey(func([]byte) error { return boom }), boom)
}

func TestCheckIntegrity(t *testing.T) {
	s := New()
	assert.False(t, s.CheckIntegrity(), "locked session has nothing to check")

	require.NoError(t, s.Install(testKey()))
	assert.True(t, s.CheckIntegrity())
	assert.True(t, s.IsUnlocked())

	s.mu.Lock()
	s.key[0] ^= 0xff
	s.mu.Unlock()

	assert.False(t, s.CheckIntegrity())
	assert.False(t, s.IsUnlocked(), "corrupted key must lock the session")
}

func TestIdleTimeout_AutoLocks(t *testing.T) {
	s := New(WithIdleTimeout(30 * time.Millisecond))
	require.NoError(t, s.Install(testKey()))
	assert.True(t, s.IsUnlocked())

	assert.Eventually(t, func() bool { return !s.IsUnlocked() }, time.Second, 5*time.Millisecond)
}

func TestIdleTimeout_UseKeepsSessionOpen(t *testing.T) {
	s := New(WithIdleTimeout(80 * time.Millisecond))
	require.NoError(t, s.Install(testKey()))

	for i := 0; i < 5; i++ {
		time.Sleep(30 * time.Millisecond)
		require.NoError(t, s.WithKey(func([]byte) error { return nil }))
	}
	assert.True(t, s.IsUnlocked())
	s.Lock()
}

func TestConcurrentLockAndUse(t *testing.T) {
	s := New()
	require.NoError(t, s.Install(testKey()))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithKey(func(k []byte) error {
				// a key observed inside WithKey is never half-wiped
				if !bytes.Equal(k, testKey()) {
					return errors.New("observed wiped key")
				}
				return nil
			})
			if err != nil && !errors.Is(err, common.ErrVaultLocked) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Lock()
	}()
	wg.Wait()
	assert.False(t, s.IsUnlocked())
}
