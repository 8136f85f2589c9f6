package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// Cipher seals personal fields (employee CPF) at rest with AES-256-GCM.
// The owning row id is bound as associated data so a value cannot be moved between rows.
// A Cipher without a key stores values in the clear.
type Cipher struct {
	aead cipher.AEAD
}

func New(key string) (*Cipher, error) {
	if key == "" {
		return &Cipher{}, nil
	}
	decoded, err := decodeKey(key)
	if err != nil {
		return nil, err
	}
	if len(decoded) != 32 {
		return nil, fmt.Errorf("DATA_ENCRYPTION_KEY must be 32 bytes after decoding")
	}
	block, err := aes.NewCipher(decoded)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

func (c *Cipher) Enabled() bool {
	return c != nil && c.aead != nil
}

func (c *Cipher) Seal(plain, rowID []byte) ([]byte, error) {
	if len(plain) == 0 {
		return nil, nil
	}
	if !c.Enabled() {
		return plain, nil
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plain, rowID), nil
}

func (c *Cipher) Open(sealed, rowID []byte) ([]byte, error) {
	if len(sealed) == 0 {
		return nil, nil
	}
	if !c.Enabled() {
		return sealed, nil
	}
	size := c.aead.NonceSize()
	if len(sealed) < size {
		return nil, ErrCiphertextTooShort
	}
	return c.aead.Open(nil, sealed[:size], sealed[size:], rowID)
}

func (c *Cipher) SealString(value, rowID string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	return c.Seal([]byte(value), []byte(rowID))
}

func (c *Cipher) OpenString(sealed []byte, rowID string) (string, error) {
	plain, err := c.Open(sealed, []byte(rowID))
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// MaskDocument keeps only the last two digits of a tax document number.
func MaskDocument(doc string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, doc)
	if len(digits) <= 2 {
		return strings.Repeat("*", len(digits))
	}
	return strings.Repeat("*", len(digits)-2) + digits[len(digits)-2:]
}

func decodeKey(raw string) ([]byte, error) {
	if len(raw) == 64 {
		if decoded, err := hex.DecodeString(raw); err == nil {
			return decoded, nil
		}
	}
	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil {
		return decoded, nil
	}
	if decoded, err := base64.RawStdEncoding.DecodeString(raw); err == nil {
		return decoded, nil
	}
	return []byte(raw), nil
}
