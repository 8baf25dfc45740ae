package storage

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// Envelope layout: magic(8) + salt(16) + nonce(12) + ciphertext + tag(16).
var envelopeMagic = []byte("GCM3NCR0")

const (
	saltSize   = 16
	nonceSize  = 12
	tagSize    = 16
	kdfRounds  = 100000
	keyBytes   = 32
	headerSize = 8 + saltSize + nonceSize
)

// IsEncrypted reports whether data starts with the envelope magic.
func IsEncrypted(data []byte) bool { return bytes.HasPrefix(data, envelopeMagic) }

// Decrypt opens an AES-GCM envelope with a PBKDF2-SHA256 key derived from password.
func Decrypt(data []byte, password string) ([]byte, error) {
	if !IsEncrypted(data) {
		return nil, fmt.Errorf("missing envelope header")
	}
	if len(data) < headerSize+tagSize {
		return nil, fmt.Errorf("GCM data too short: %d bytes", len(data))
	}
	salt := data[8 : 8+saltSize]
	nonce := data[8+saltSize : headerSize]

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, nonce, data[headerSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("GCM decryption failed: %w", err)
	}
	return plaintext, nil
}

// Encrypt seals data into an envelope. Used by the CLI to prepare encrypted templates.
func Encrypt(data []byte, password string) ([]byte, error) {
	salt := make([]byte, saltSize)
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, headerSize+len(data)+tagSize)
	out = append(out, envelopeMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, data, nil), nil
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(password), salt, kdfRounds, keyBytes, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
