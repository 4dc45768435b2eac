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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veilroom/veilroom/backend/models"
)

type funcFetcher func(ctx context.Context) (*models.Snapshot, error)

func (f funcFetcher) FetchSnapshot(ctx context.Context) (*models.Snapshot, error) {
	return f(ctx)
}

func snapshotWithRoom(roomID string, msgs ...models.Message) *models.Snapshot {
	return &models.Snapshot{
		Rooms: []models.Room{
			{ID: roomID, Name: roomID, CreatorID: "alice", Members: []models.User{{ID: "alice"}}},
		},
		Messages:    msgs,
		Permissions: []models.Permission{},
	}
}

func TestTickAssemblesRoomViews(t *testing.T) {
	base := time.Now().UTC()
	later := models.Message{ID: "m2", RoomID: "r1", Timestamp: base.Add(time.Second)}
	earlier := models.Message{ID: "m1", RoomID: "r1", Timestamp: base}
	other := models.Message{ID: "m3", RoomID: "other", Timestamp: base}

	snap := snapshotWithRoom("r1", later, earlier, other)
	syncer := NewSyncer(funcFetcher(func(ctx context.Context) (*models.Snapshot, error) {
		return snap, nil
	}), time.Minute)

	require.NoError(t, syncer.Tick(context.Background()))

	view, ok := syncer.Room("r1")
	require.True(t, ok)
	// Only r1's messages, oldest first.
	require.Len(t, view.Messages, 2)
	assert.Equal(t, "m1", view.Messages[0].ID)
	assert.Equal(t, "m2", view.Messages[1].ID)
}

func TestTickReplacesMirrorWholesale(t *testing.T) {
	snaps := []*models.Snapshot{
		snapshotWithRoom("r1"),
		snapshotWithRoom("r2"),
	}
	var calls int
	syncer := NewSyncer(funcFetcher(func(ctx context.Context) (*models.Snapshot, error) {
		snap := snaps[calls]
		calls++
		return snap, nil
	}), time.Minute)

	require.NoError(t, syncer.Tick(context.Background()))
	require.NoError(t, syncer.Tick(context.Background()))

	// No delta merge: r1 vanished with the second snapshot.
	_, ok := syncer.Room("r1")
	assert.False(t, ok)
	_, ok = syncer.Room("r2")
	assert.True(t, ok)
}

func TestFailedTickKeepsStaleMirror(t *testing.T) {
	var fail bool
	syncer := NewSyncer(funcFetcher(func(ctx context.Context) (*models.Snapshot, error) {
		if fail {
			return nil, errors.New("store unreachable")
		}
		return snapshotWithRoom("r1"), nil
	}), time.Minute)

	require.NoError(t, syncer.Tick(context.Background()))

	fail = true
	err := syncer.Tick(context.Background())
	require.Error(t, err)

	// Stale-but-present beats empty.
	_, ok := syncer.Room("r1")
	assert.True(t, ok)
}

func TestStopDiscardsLateFetch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan *models.Snapshot)
	syncer := NewSyncer(funcFetcher(func(ctx context.Context) (*models.Snapshot, error) {
		started <- struct{}{}
		return <-release, nil
	}), time.Minute)

	syncer.Start("alice")
	<-started

	stopped := make(chan struct{})
	go func() {
		syncer.Stop()
		close(stopped)
	}()

	// Let the in-flight fetch complete after Stop was requested.
	release <- snapshotWithRoom("r1")
	<-stopped

	// The late response must not resurrect state.
	assert.Nil(t, syncer.Snapshot())
	assert.Empty(t, syncer.Rooms())
}

func TestStopWithoutStartIsSafe(t *testing.T) {
	syncer := NewSyncer(funcFetcher(func(ctx context.Context) (*models.Snapshot, error) {
		return snapshotWithRoom("r1"), nil
	}), time.Minute)

	syncer.Stop()
	syncer.Stop()
}
