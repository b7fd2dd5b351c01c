// Package crypt provides reversible encryption for payment reference strings.
// Tokens are self-describing ("iv:ciphertext" hex pairs) so decryption needs
// nothing beyond the server key.
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/scrypt"
)

const keySize = 32

var scryptSalt = []byte("solutions-market-reference")

type Cipher struct {
	key []byte
	log *zap.Logger
}

// New builds a cipher from a raw hex key. When keyHex is empty the key is
// derived from the passphrase instead, so deployments without a provisioned
// key still encrypt with a stable secret.
func New(keyHex, passphrase string, log *zap.Logger) (*Cipher, error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, fmt.Errorf("invalid encryption key: %w", err)
		}
		if len(key) != keySize {
			return nil, fmt.Errorf("encryption key must be %d bytes, got %d", keySize, len(key))
		}
		return &Cipher{key: key, log: log}, nil
	}

	key, err := scrypt.Key([]byte(passphrase), scryptSalt, 1<<15, 8, 1, keySize)
	if err != nil {
		return nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}
	return &Cipher{key: key, log: log}, nil
}

// Encrypt returns "iv:ciphertext" with both parts hex-encoded. A fresh random
// IV is drawn per call.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	out := make([]byte, len(plaintext))
	cipher.NewCTR(block, iv).XORKeyStream(out, []byte(plaintext))

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. Values stored before encryption was introduced
// are plain strings without the iv prefix; those are returned unchanged with
// legacy=true instead of failing, since the caller only ever compares the
// result for equality.
func (c *Cipher) Decrypt(token string) (plaintext string, legacy bool) {
	ivHex, dataHex, ok := strings.Cut(token, ":")
	if !ok {
		c.warnLegacy(token)
		return token, true
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != aes.BlockSize {
		c.warnLegacy(token)
		return token, true
	}

	data, err := hex.DecodeString(dataHex)
	if err != nil {
		c.warnLegacy(token)
		return token, true
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		c.warnLegacy(token)
		return token, true
	}

	out := make([]byte, len(data))
	cipher.NewCTR(block, iv).XORKeyStream(out, data)

	return string(out), false
}

func (c *Cipher) warnLegacy(token string) {
	if c.log != nil {
		c.log.Warn("stored reference is not a cipher token, treating as legacy plaintext",
			zap.Int("token_len", len(token)))
	}
}
