// Copyright (C) 2025 veilroom <dev@veilroom.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package client

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veilroom/veilroom/backend/service"
	badgerStore "github.com/veilroom/veilroom/backend/storage/badger"
	"github.com/veilroom/veilroom/crypto"
)

// End-to-end pipeline tests: real sessions with real X25519 key pairs
// against the room store service running in-process over an in-memory
// store.

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := badgerStore.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	router := mux.NewRouter()
	service.New(store, crypto.NewBox()).RegisterRoutes(router, nil)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func newTestSession(t *testing.T, srv *httptest.Server, id, name string) *Session {
	t.Helper()
	sess, err := NewSession(context.Background(), New(srv.URL), crypto.NewBox(), id, name)
	require.NoError(t, err)
	return sess
}

func TestBlockedRecipientCannotRead(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)

	sender := newTestSession(t, srv, "sender", "Sender")
	alice := newTestSession(t, srv, "alice", "Alice")
	bob := newTestSession(t, srv, "bob", "Bob")

	room, err := sender.CreateRoom(ctx, "lounge")
	require.NoError(t, err)
	_, err = alice.JoinRoom(ctx, room.ID)
	require.NoError(t, err)
	_, err = bob.JoinRoom(ctx, room.ID)
	require.NoError(t, err)

	require.NoError(t, sender.SetPermission(ctx, room.ID, alice.User.ID, false))
	require.NoError(t, sender.Sync(ctx))

	sent, err := sender.SendMessage(ctx, room.ID, "hello")
	require.NoError(t, err)

	// Bob got a version, blocked Alice did not, the sender never
	// encrypts for itself.
	require.Len(t, sent.EncryptedVersions, 1)
	require.Contains(t, sent.EncryptedVersions, bob.User.ID)

	for _, sess := range []*Session{sender, alice, bob} {
		require.NoError(t, sess.Sync(ctx))
	}

	view, ok := bob.syncer.Room(room.ID)
	require.True(t, ok)
	require.Len(t, view.Messages, 1)
	msg := view.Messages[0]

	assert.Equal(t, "hello", sender.Read(ctx, msg))
	assert.Equal(t, "hello", bob.Read(ctx, msg))
	assert.Equal(t, "", alice.Read(ctx, msg))
}

func TestPermissionChangeIsNotRetroactive(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)

	sender := newTestSession(t, srv, "sender", "Sender")
	alice := newTestSession(t, srv, "alice", "Alice")

	room, err := sender.CreateRoom(ctx, "lounge")
	require.NoError(t, err)
	_, err = alice.JoinRoom(ctx, room.ID)
	require.NoError(t, err)

	require.NoError(t, sender.Sync(ctx))
	_, err = sender.SendMessage(ctx, room.ID, "first")
	require.NoError(t, err)

	require.NoError(t, sender.SetPermission(ctx, room.ID, alice.User.ID, false))
	require.NoError(t, sender.Sync(ctx))
	_, err = sender.SendMessage(ctx, room.ID, "second")
	require.NoError(t, err)

	require.NoError(t, alice.Sync(ctx))
	view, ok := alice.syncer.Room(room.ID)
	require.True(t, ok)
	require.Len(t, view.Messages, 2)

	// The recipient set was fixed per message at send time.
	assert.Equal(t, "first", alice.Read(ctx, view.Messages[0]))
	assert.Equal(t, "", alice.Read(ctx, view.Messages[1]))
}

func TestUnblockRestoresFutureMessages(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)

	sender := newTestSession(t, srv, "sender", "Sender")
	alice := newTestSession(t, srv, "alice", "Alice")

	room, err := sender.CreateRoom(ctx, "lounge")
	require.NoError(t, err)
	_, err = alice.JoinRoom(ctx, room.ID)
	require.NoError(t, err)

	require.NoError(t, sender.SetPermission(ctx, room.ID, alice.User.ID, false))
	require.NoError(t, sender.Sync(ctx))
	_, err = sender.SendMessage(ctx, room.ID, "hidden")
	require.NoError(t, err)

	require.NoError(t, sender.SetPermission(ctx, room.ID, alice.User.ID, true))
	require.NoError(t, sender.Sync(ctx))
	_, err = sender.SendMessage(ctx, room.ID, "visible")
	require.NoError(t, err)

	require.NoError(t, alice.Sync(ctx))
	view, ok := alice.syncer.Room(room.ID)
	require.True(t, ok)
	require.Len(t, view.Messages, 2)

	assert.Equal(t, "", alice.Read(ctx, view.Messages[0]))
	assert.Equal(t, "visible", alice.Read(ctx, view.Messages[1]))
}

func TestImageMessageRoundTrip(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)

	sender := newTestSession(t, srv, "sender", "Sender")
	alice := newTestSession(t, srv, "alice", "Alice")

	room, err := sender.CreateRoom(ctx, "lounge")
	require.NoError(t, err)
	_, err = alice.JoinRoom(ctx, room.ID)
	require.NoError(t, err)

	require.NoError(t, sender.Sync(ctx))
	dataURL := "data:image/png;base64,iVBORw0KGgo="
	sent, err := sender.SendImage(ctx, room.ID, dataURL, "cat.png")
	require.NoError(t, err)
	assert.Equal(t, "image", sent.MessageType)
	assert.Equal(t, "cat.png", sent.FileName)

	require.NoError(t, alice.Sync(ctx))
	view, ok := alice.syncer.Room(room.ID)
	require.True(t, ok)
	require.Len(t, view.Messages, 1)
	assert.Equal(t, dataURL, alice.Read(ctx, view.Messages[0]))
}

func TestDeleteRoomCascades(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)

	sender := newTestSession(t, srv, "sender", "Sender")
	alice := newTestSession(t, srv, "alice", "Alice")

	room, err := sender.CreateRoom(ctx, "doomed")
	require.NoError(t, err)
	_, err = alice.JoinRoom(ctx, room.ID)
	require.NoError(t, err)

	require.NoError(t, sender.Sync(ctx))
	_, err = sender.SendMessage(ctx, room.ID, "one")
	require.NoError(t, err)
	_, err = sender.SendMessage(ctx, room.ID, "two")
	require.NoError(t, err)
	require.NoError(t, sender.SetPermission(ctx, room.ID, alice.User.ID, false))

	// Only the creator may delete.
	_, err = alice.DeleteRoom(ctx, room.ID)
	require.Error(t, err)

	result, err := sender.DeleteRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, room.ID, result.DeletedRoom.ID)
	assert.Equal(t, 2, result.DeletedMessages)
	assert.Equal(t, 1, result.DeletedPermissions)

	require.NoError(t, alice.Sync(ctx))
	assert.Empty(t, alice.Rooms())
}

func TestJoinUnknownRoom(t *testing.T) {
	srv := newTestServer(t)
	sess := newTestSession(t, srv, "alice", "Alice")

	_, err := sess.JoinRoom(context.Background(), "no-such-room")
	require.Error(t, err)
}
