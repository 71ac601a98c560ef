// Package crypto encrypts subscriber contact data at rest. The subscriber
// file holds emails and preference details; when an encryption passphrase
// is configured those fields are sealed with AES-GCM under a PBKDF2-derived
// key. Without a passphrase the package degrades to pass-through.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	iterations = 100000
	keySize    = 32 // AES-256
)

// Sealer encrypts and decrypts strings. A nil Sealer passes data through
// unchanged, so callers never need to branch on whether encryption is on.
type Sealer struct {
	key []byte
}

// NewSealer derives an AES key from the passphrase. An empty passphrase
// returns nil, meaning "no encryption".
func NewSealer(passphrase string) *Sealer {
	if passphrase == "" {
		return nil
	}

	// The salt only needs to be stable per passphrase; it is derived
	// rather than stored so the subscriber file stays a plain JSON blob.
	salt := sha256.Sum256([]byte(passphrase + "mehfil-subscriber-salt"))
	key := pbkdf2.Key([]byte(passphrase), salt[:], iterations, keySize, sha256.New)
	return &Sealer{key: key}
}

// Seal encrypts plaintext with AES-GCM and base64-encodes the result.
func (s *Sealer) Seal(plaintext string) (string, error) {
	if s == nil || s.key == nil {
		return plaintext, nil
	}
	if plaintext == "" {
		return "", nil
	}

	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal. Input that is not valid
// ciphertext is returned as-is, so files written before encryption was
// enabled still load.
func (s *Sealer) Open(ciphertext string) (string, error) {
	if s == nil || s.key == nil {
		return ciphertext, nil
	}
	if ciphertext == "" {
		return "", nil
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return ciphertext, nil
	}

	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, sealed := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return ciphertext, nil
	}
	return string(plaintext), nil
}
