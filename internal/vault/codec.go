package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	ivSize  = 16
	tagSize = 16

	// scrypt cost parameters. Derivation takes tens of milliseconds.
	scryptN = 1 << 14
	scryptR = 8
	scryptP = 1
)

// ErrAuthentication is returned when a blob is malformed, was tampered with,
// or was sealed under a different key.
var ErrAuthentication = errors.New("vault: authentication failed")

// Seal encrypts plaintext with AES-256-GCM under a fresh random IV and
// returns the text form "<ivHex>:<authTagHex>:<cipherHex>".
func Seal(plaintext, key []byte) (string, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}

	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("vault: iv generation: %w", err)
	}

	sealed := aead.Seal(nil, iv, plaintext, nil)
	body, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(tag) + ":" + hex.EncodeToString(body), nil
}

// Open reverses Seal. Any format or integrity problem yields ErrAuthentication.
func Open(blob string, key []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	parts := strings.Split(strings.TrimSpace(blob), ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 fields, got %d", ErrAuthentication, len(parts))
	}

	iv, ok := decodeHex(parts[0])
	if !ok || len(iv) != ivSize {
		return nil, fmt.Errorf("%w: bad iv", ErrAuthentication)
	}
	tag, ok := decodeHex(parts[1])
	if !ok || len(tag) != tagSize {
		return nil, fmt.Errorf("%w: bad tag", ErrAuthentication)
	}
	body, ok := decodeHex(parts[2])
	if !ok {
		return nil, fmt.Errorf("%w: bad ciphertext", ErrAuthentication)
	}

	plaintext, err := aead.Open(nil, iv, append(body, tag...), nil)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}

// decodeHex accepts only the lowercase form Seal writes, so a case change
// in the stored text counts as tampering.
func decodeHex(field string) ([]byte, bool) {
	b, err := hex.DecodeString(field)
	if err != nil || hex.EncodeToString(b) != field {
		return nil, false
	}
	return b, true
}

// DeriveKey stretches a machine identifier and salt into an AES-256 key.
func DeriveKey(machineID, salt string) ([]byte, error) {
	key, err := scrypt.Key([]byte(machineID), []byte(salt), scryptN, scryptR, scryptP, KeySize)
	if err != nil {
		return nil, fmt.Errorf("vault: key derivation: %w", err)
	}
	return key, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("vault: key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vault: block cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, fmt.Errorf("vault: gcm: %w", err)
	}
	return aead, nil
}
