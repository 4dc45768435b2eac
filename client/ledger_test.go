// Copyright (C) 2025 veilroom <dev@veilroom.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/veilroom/veilroom/backend/models"
)

func TestLedgerDefaultsToAllowed(t *testing.T) {
	ledger := NewPermissionLedger(nil)
	assert.True(t, ledger.IsAllowed("alice", "bob", "r1"))
}

func TestLedgerHonorsExplicitBlock(t *testing.T) {
	ledger := NewPermissionLedger([]models.Permission{
		{FromUserID: "alice", ToUserID: "bob", RoomID: "r1", Allowed: false, Timestamp: time.Now()},
	})

	assert.False(t, ledger.IsAllowed("alice", "bob", "r1"))

	// Only the exact triple matches; everything else stays default-allow.
	assert.True(t, ledger.IsAllowed("bob", "alice", "r1"))
	assert.True(t, ledger.IsAllowed("alice", "bob", "r2"))
	assert.True(t, ledger.IsAllowed("alice", "carol", "r1"))
}

func TestLedgerLatestRecordWins(t *testing.T) {
	base := time.Now()
	ledger := NewPermissionLedger([]models.Permission{
		{FromUserID: "alice", ToUserID: "bob", RoomID: "r1", Allowed: false, Timestamp: base},
		{FromUserID: "alice", ToUserID: "bob", RoomID: "r1", Allowed: true, Timestamp: base.Add(time.Second)},
	})

	assert.True(t, ledger.IsAllowed("alice", "bob", "r1"))
}

func TestLedgerIsPureRead(t *testing.T) {
	perms := []models.Permission{
		{FromUserID: "alice", ToUserID: "bob", RoomID: "r1", Allowed: false, Timestamp: time.Now()},
	}
	ledger := NewPermissionLedger(perms)

	// Repeated lookups yield the same answer and never mutate anything.
	for i := 0; i < 3; i++ {
		assert.False(t, ledger.IsAllowed("alice", "bob", "r1"))
	}
	assert.False(t, perms[0].Allowed)
}
