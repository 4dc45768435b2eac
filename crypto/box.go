// Copyright (C) 2025 veilroom <dev@veilroom.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package crypto

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"github.com/cloudflare/circl/dh/x25519"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const hkdfInfo = "veilroom-v1"

var (
	errBadKey        = errors.New("malformed key")
	errBadCiphertext = errors.New("malformed ciphertext")
	errAuthFailed    = errors.New("authentication failed")
	errLowOrderKey   = errors.New("low order public key")
)

// Box implements Provider with ECIES over X25519:
//   - ephemeral X25519 key pair per ciphertext
//   - shared secret via ECDH
//   - symmetric key derived with HKDF-SHA256
//   - authenticated encryption with ChaCha20-Poly1305
//
// Ciphertext layout, base64 encoded: ephPub(32) || nonce(12) || sealed+tag.
type Box struct{}

func NewBox() *Box {
	return &Box{}
}

func (b *Box) GenerateKeyPair(ctx context.Context) (KeyPair, error) {
	if err := ctx.Err(); err != nil {
		return KeyPair{}, providerErr("genkeyp", err)
	}

	var priv, pub x25519.Key
	if _, err := io.ReadFull(rand.Reader, priv[:]); err != nil {
		return KeyPair{}, providerErr("genkeyp", err)
	}
	x25519.KeyGen(&pub, &priv)

	return KeyPair{
		PublicKey:  base64.StdEncoding.EncodeToString(pub[:]),
		PrivateKey: base64.StdEncoding.EncodeToString(priv[:]),
	}, nil
}

func (b *Box) Encrypt(ctx context.Context, publicKey, plaintext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", providerErr("encrypt", err)
	}

	recipientPub, err := decodeKey(publicKey)
	if err != nil {
		return "", providerErr("encrypt", err)
	}

	var ephPriv, ephPub x25519.Key
	if _, err := io.ReadFull(rand.Reader, ephPriv[:]); err != nil {
		return "", providerErr("encrypt", err)
	}
	x25519.KeyGen(&ephPub, &ephPriv)

	var shared x25519.Key
	if !x25519.Shared(&shared, &ephPriv, &recipientPub) {
		return "", providerErr("encrypt", errLowOrderKey)
	}

	key, err := deriveKey(shared[:], ephPub[:])
	if err != nil {
		return "", providerErr("encrypt", err)
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return "", providerErr("encrypt", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", providerErr("encrypt", err)
	}

	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)

	out := make([]byte, 0, x25519.Size+len(nonce)+len(sealed))
	out = append(out, ephPub[:]...)
	out = append(out, nonce...)
	out = append(out, sealed...)
	return base64.StdEncoding.EncodeToString(out), nil
}

func (b *Box) Decrypt(ctx context.Context, privateKey, ciphertext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", providerErr("decrypt", err)
	}

	priv, err := decodeKey(privateKey)
	if err != nil {
		return "", providerErr("decrypt", err)
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", providerErr("decrypt", errBadCiphertext)
	}
	if len(data) < x25519.Size+chacha20poly1305.NonceSize+chacha20poly1305.Overhead {
		return "", providerErr("decrypt", errBadCiphertext)
	}

	var ephPub x25519.Key
	copy(ephPub[:], data[:x25519.Size])
	nonce := data[x25519.Size : x25519.Size+chacha20poly1305.NonceSize]
	sealed := data[x25519.Size+chacha20poly1305.NonceSize:]

	var shared x25519.Key
	if !x25519.Shared(&shared, &priv, &ephPub) {
		return "", providerErr("decrypt", errAuthFailed)
	}

	key, err := deriveKey(shared[:], ephPub[:])
	if err != nil {
		return "", providerErr("decrypt", err)
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return "", providerErr("decrypt", err)
	}

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		// Wrong key or corrupt ciphertext. Callers treat this as
		// "not addressed to me", not as a fatal condition.
		return "", providerErr("decrypt", errAuthFailed)
	}
	return string(plaintext), nil
}

func (b *Box) DeriveSharedSecret(ctx context.Context, privateKey, publicKey string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", providerErr("dssecrt", err)
	}

	priv, err := decodeKey(privateKey)
	if err != nil {
		return "", providerErr("dssecrt", err)
	}
	pub, err := decodeKey(publicKey)
	if err != nil {
		return "", providerErr("dssecrt", err)
	}

	var shared x25519.Key
	if !x25519.Shared(&shared, &priv, &pub) {
		return "", providerErr("dssecrt", errLowOrderKey)
	}
	return base64.StdEncoding.EncodeToString(shared[:]), nil
}

func decodeKey(encoded string) (x25519.Key, error) {
	var key x25519.Key
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(raw) != x25519.Size {
		return key, errBadKey
	}
	copy(key[:], raw)
	return key, nil
}

func deriveKey(shared, ephPub []byte) ([]byte, error) {
	r := hkdf.New(sha256.New, shared, ephPub, []byte(hkdfInfo))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}
