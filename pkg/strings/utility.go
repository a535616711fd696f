// Package strings provides helpers for handling archive secrets kept in
// the toolset configuration file.
package strings

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// SecretPrefix marks an encrypted secret in the configuration file.
const SecretPrefix = "enc:"

// Encrypt encrypts `plaintext` with AES-GCM. The nonce is prepended to the
// returned ciphertext.
func Encrypt(plaintext []byte, key []byte) ([]byte, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(c)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt reverses Encrypt.
func Decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(c)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// EncodeSecret encrypts `secret` and returns it in the `enc:<hex>` form.
func EncodeSecret(secret, key []byte) (string, error) {
	ct, err := Encrypt(secret, key)
	if err != nil {
		return "", errors.Wrap(err, "cannot encrypt secret")
	}
	return SecretPrefix + hex.EncodeToString(ct), nil
}

// DecodeSecret returns the plain text of `value`. Values without the
// `enc:` prefix are returned unchanged.
func DecodeSecret(value string, key []byte) (string, error) {
	if !strings.HasPrefix(value, SecretPrefix) {
		return value, nil
	}

	if len(key) == 0 {
		return "", errors.New("encrypted secret found but no decryption key given")
	}

	ct, err := hex.DecodeString(strings.TrimPrefix(value, SecretPrefix))
	if err != nil {
		return "", errors.Wrap(err, "malformed encrypted secret")
	}

	pt, err := Decrypt(ct, key)
	if err != nil {
		return "", errors.Wrap(err, "cannot decrypt secret")
	}
	return string(pt), nil
}
