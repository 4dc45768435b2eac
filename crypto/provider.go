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

// Package crypto is the provider boundary for all asymmetric operations:
// key generation, per-recipient encryption, decryption and shared-secret
// derivation. Callers treat it as an external collaborator: stateless,
// request/response, failing closed with a structured *ProviderError.
package crypto

import (
	"context"
	"fmt"
)

// KeyPair is a base64-encoded X25519 key pair.
type KeyPair struct {
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
}

type Provider interface {
	GenerateKeyPair(ctx context.Context) (KeyPair, error)

	// Encrypt encrypts plaintext to the holder of publicKey. Each call
	// produces an independent ciphertext, even for identical inputs.
	Encrypt(ctx context.Context, publicKey, plaintext string) (string, error)

	// Decrypt reverses Encrypt. It fails for any key other than the one
	// matching the public key the ciphertext was produced for.
	Decrypt(ctx context.Context, privateKey, ciphertext string) (string, error)

	// DeriveSharedSecret returns the Diffie-Hellman secret shared between
	// privateKey and publicKey, base64 encoded.
	DeriveSharedSecret(ctx context.Context, privateKey, publicKey string) (string, error)
}

// ProviderError is the structured failure every provider operation returns.
// It is always distinguishable from success and never carries plaintext.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("crypto: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func providerErr(op string, err error) *ProviderError {
	return &ProviderError{Op: op, Err: err}
}
