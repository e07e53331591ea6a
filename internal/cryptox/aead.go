package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/dmitrijs2005/credvault/internal/common"
)

// NonceSize is the AES-GCM standard nonce length.
const NonceSize = 12

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("aes-gcm requires a %d-byte key, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}

// Seal encrypts plaintext with AES-256-GCM under key. A new random 12-byte
// nonce is generated for every call; callers cannot supply one.
func Seal(key, plaintext []byte) (ciphertext, nonce []byte, err error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}
	nonce = common.GenerateRandByteArray(gcm.NonceSize())
	return gcm.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// SealWithNonce encrypts under a caller-chosen nonce. Only the legacy
// split-field writer uses it, where one nonce was shared by the secret, the
// username and the notes of a record.
func SealWithNonce(key, nonce, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, fmt.Errorf("invalid nonce size %d", len(nonce))
	}
	return gcm.Seal(nil, nonce, plaintext, nil), nil
}

// Open authenticates and decrypts. Any failure, whether a wrong key, a
// tampered ciphertext or a malformed nonce, is reported as
// common.ErrDecryption and nothing more.
func Open(key, ciphertext, nonce []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, common.ErrDecryption
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, common.ErrDecryption
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, common.ErrDecryption
	}
	return plaintext, nil
}
