package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/crypto/hkdf"
)

var panPattern = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)

// IsValidPAN reports whether pan looks like ABCDE1234F, ignoring case and
// surrounding space.
func IsValidPAN(pan string) bool {
	return panPattern.MatchString(strings.ToUpper(strings.TrimSpace(pan)))
}

// HashPAN returns the hex SHA-256 of the upper-cased, trimmed PAN. Raw PANs are never stored.
func HashPAN(pan string) string {
	sum := sha256.Sum256([]byte(strings.ToUpper(strings.TrimSpace(pan))))
	return hex.EncodeToString(sum[:])
}

// MaskPAN masks a PAN for display: ABCDE1234F becomes A****1234F.
func MaskPAN(pan string) string {
	pan = strings.ToUpper(strings.TrimSpace(pan))
	if len(pan) != 10 {
		return "****"
	}
	return pan[:1] + "****" + pan[5:]
}

const vaultKeyInfo = "bureau-report"

// Vault encrypts bureau reports at rest with AES-256-GCM.
type Vault struct {
	aead cipher.AEAD
}

// NewVault derives the AES key from a hex secret with HKDF-SHA256.
func NewVault(secretHex string) (*Vault, error) {
	secret, err := hex.DecodeString(strings.TrimSpace(secretHex))
	if err != nil {
		return nil, fmt.Errorf("encryption key must be hex: %w", err)
	}
	if len(secret) == 0 {
		return nil, errors.New("encryption key is empty")
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(vaultKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcm: %w", err)
	}
	return &Vault{aead: aead}, nil
}

// Encrypt returns base64(nonce || ciphertext).
func (v *Vault) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to read nonce: %w", err)
	}
	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func (v *Vault) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("invalid ciphertext encoding: %w", err)
	}
	size := v.aead.NonceSize()
	if len(raw) < size {
		return "", errors.New("ciphertext too short")
	}
	plaintext, err := v.aead.Open(nil, raw[:size], raw[size:], nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plaintext), nil
}
