// Copyright (C) 2025 veilroom <dev@veilroom.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/veilroom/veilroom/backend/models"
)

var (
	sender = models.User{ID: "s", Name: "Sender", PublicKey: "pub-s"}
	memA   = models.User{ID: "a", Name: "A", PublicKey: "pub-a"}
	memB   = models.User{ID: "b", Name: "B", PublicKey: "pub-b"}
)

func TestFanoutEncryptsForEveryAllowedMember(t *testing.T) {
	fanout := NewFanout(&fakeProvider{})
	members := []models.User{sender, memA, memB}

	versions := fanout.EncryptForRoom(context.Background(), sender, members,
		NewPermissionLedger(nil), "r1", "hello")

	assert.Len(t, versions, 2)
	assert.Equal(t, "enc|pub-a|hello", versions["a"])
	assert.Equal(t, "enc|pub-b|hello", versions["b"])
}

func TestFanoutExcludesSender(t *testing.T) {
	fanout := NewFanout(&fakeProvider{})

	versions := fanout.EncryptForRoom(context.Background(), sender,
		[]models.User{sender}, NewPermissionLedger(nil), "r1", "hello")

	assert.Empty(t, versions)
}

func TestFanoutOmitsBlockedMembers(t *testing.T) {
	fanout := NewFanout(&fakeProvider{})
	ledger := NewPermissionLedger([]models.Permission{
		{FromUserID: "s", ToUserID: "a", RoomID: "r1", Allowed: false, Timestamp: time.Now()},
	})

	versions := fanout.EncryptForRoom(context.Background(), sender,
		[]models.User{sender, memA, memB}, ledger, "r1", "hello")

	assert.Len(t, versions, 1)
	assert.NotContains(t, versions, "a")
	assert.Contains(t, versions, "b")
}

func TestFanoutBlockIsScopedToRoom(t *testing.T) {
	fanout := NewFanout(&fakeProvider{})
	ledger := NewPermissionLedger([]models.Permission{
		{FromUserID: "s", ToUserID: "a", RoomID: "other", Allowed: false, Timestamp: time.Now()},
	})

	versions := fanout.EncryptForRoom(context.Background(), sender,
		[]models.User{sender, memA}, ledger, "r1", "hello")

	assert.Contains(t, versions, "a")
}

func TestFanoutToleratesPartialEncryptionFailure(t *testing.T) {
	provider := &fakeProvider{failEncryptFor: map[string]bool{"pub-a": true}}
	fanout := NewFanout(provider)

	versions := fanout.EncryptForRoom(context.Background(), sender,
		[]models.User{sender, memA, memB}, NewPermissionLedger(nil), "r1", "hello")

	// A's failure omits A; B is unaffected.
	assert.Len(t, versions, 1)
	assert.NotContains(t, versions, "a")
	assert.Equal(t, "enc|pub-b|hello", versions["b"])
}
