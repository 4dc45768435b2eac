// Copyright (C) 2025 veilroom <dev@veilroom.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/veilroom/veilroom/crypto"
)

// fakeProvider pairs keys by suffix: "pub-X" decrypts with "priv-X".
// Ciphertexts are transparent ("enc|pub-X|plaintext") so tests can assert
// on them without real cryptography.
type fakeProvider struct {
	keyCounter     atomic.Int64
	failEncryptFor map[string]bool // public keys whose encryption fails
	failDecrypt    bool
}

func (f *fakeProvider) GenerateKeyPair(ctx context.Context) (crypto.KeyPair, error) {
	n := f.keyCounter.Add(1)
	return crypto.KeyPair{
		PublicKey:  fmt.Sprintf("pub-%d", n),
		PrivateKey: fmt.Sprintf("priv-%d", n),
	}, nil
}

func (f *fakeProvider) Encrypt(ctx context.Context, publicKey, plaintext string) (string, error) {
	if f.failEncryptFor[publicKey] {
		return "", &crypto.ProviderError{Op: "encrypt", Err: errors.New("injected failure")}
	}
	return "enc|" + publicKey + "|" + plaintext, nil
}

func (f *fakeProvider) Decrypt(ctx context.Context, privateKey, ciphertext string) (string, error) {
	if f.failDecrypt {
		return "", &crypto.ProviderError{Op: "decrypt", Err: errors.New("injected failure")}
	}
	parts := strings.SplitN(ciphertext, "|", 3)
	if len(parts) != 3 || parts[0] != "enc" {
		return "", &crypto.ProviderError{Op: "decrypt", Err: errors.New("malformed ciphertext")}
	}
	wantPriv := "priv-" + strings.TrimPrefix(parts[1], "pub-")
	if privateKey != wantPriv {
		return "", &crypto.ProviderError{Op: "decrypt", Err: errors.New("key mismatch")}
	}
	return parts[2], nil
}

func (f *fakeProvider) DeriveSharedSecret(ctx context.Context, privateKey, publicKey string) (string, error) {
	return "shared|" + privateKey + "|" + publicKey, nil
}
