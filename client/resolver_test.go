// Copyright (C) 2025 veilroom <dev@veilroom.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package client

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veilroom/veilroom/backend/models"
)

func testResolverMessage() models.Message {
	return models.Message{
		ID:       "m1",
		SenderID: "s",
		Content:  "hello",
		EncryptedVersions: map[string]string{
			"b": "enc|pub-b|hello",
		},
		RoomID:      "r1",
		MessageType: models.MessageTypeText,
	}
}

func TestResolveOwnMessageSkipsDecryption(t *testing.T) {
	// failDecrypt proves the provider is never consulted for own messages.
	resolver := NewResolver(&fakeProvider{failDecrypt: true})

	got := resolver.Resolve(context.Background(), testResolverMessage(), "s", "priv-s")
	assert.Equal(t, "hello", got)
}

func TestResolveDecryptsOwnVersion(t *testing.T) {
	resolver := NewResolver(&fakeProvider{})

	got := resolver.Resolve(context.Background(), testResolverMessage(), "b", "priv-b")
	assert.Equal(t, "hello", got)
}

func TestResolveMissingVersionIsInvisible(t *testing.T) {
	resolver := NewResolver(&fakeProvider{})

	// No entry for "a": render nothing, not an error.
	got := resolver.Resolve(context.Background(), testResolverMessage(), "a", "priv-a")
	assert.Equal(t, "", got)
}

func TestResolveDecryptFailureIsInvisible(t *testing.T) {
	resolver := NewResolver(&fakeProvider{failDecrypt: true})

	got := resolver.Resolve(context.Background(), testResolverMessage(), "b", "priv-b")
	assert.Equal(t, "", got)
}

func TestResolveIsIdempotentAndConcurrencySafe(t *testing.T) {
	resolver := NewResolver(&fakeProvider{})
	msg := testResolverMessage()

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = resolver.Resolve(context.Background(), msg, "b", "priv-b")
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, "hello", got)
	}
}
