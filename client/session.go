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

package client

import (
	"context"
	"time"

	"github.com/veilroom/veilroom/backend/models"
	"github.com/veilroom/veilroom/backend/storage"
	"github.com/veilroom/veilroom/crypto"
)

// Session is one logged-in identity on one client. It owns the private key
// (never sent anywhere), the polling synchronizer, and the fan-out and
// resolve pipelines bound to that identity.
type Session struct {
	User models.User

	privateKey string
	store      *Client
	provider   crypto.Provider
	syncer     *Syncer
	fanout     *Fanout
	resolver   *Resolver
}

// NewSession generates a fresh key pair for the identity and wires up the
// session. The key pair lives only for the lifetime of the session.
func NewSession(ctx context.Context, store *Client, provider crypto.Provider, userID, name string) (*Session, error) {
	keypair, err := provider.GenerateKeyPair(ctx)
	if err != nil {
		return nil, err
	}

	return &Session{
		User: models.User{
			ID:        userID,
			Name:      name,
			PublicKey: keypair.PublicKey,
		},
		privateKey: keypair.PrivateKey,
		store:      store,
		provider:   provider,
		syncer:     NewSyncer(store, defaultPollInterval),
		fanout:     NewFanout(provider),
		resolver:   NewResolver(provider),
	}, nil
}

// SetPollInterval adjusts how often the session polls the store. Must be
// called before StartSync.
func (s *Session) SetPollInterval(interval time.Duration) {
	s.syncer = NewSyncer(s.store, interval)
}

// StartSync begins polling the store into the session's local mirror.
func (s *Session) StartSync() {
	s.syncer.Start(s.User.ID)
}

// StopSync halts polling. Safe to call repeatedly.
func (s *Session) StopSync() {
	s.syncer.Stop()
}

// Sync performs one synchronous poll tick.
func (s *Session) Sync(ctx context.Context) error {
	return s.syncer.Tick(ctx)
}

// Rooms returns the session's current mirrored room views.
func (s *Session) Rooms() []RoomView {
	return s.syncer.Rooms()
}

// Logout stops the synchronizer and drops the private key.
func (s *Session) Logout() {
	s.syncer.Stop()
	s.privateKey = ""
}

func (s *Session) CreateRoom(ctx context.Context, name string) (*models.Room, error) {
	return s.store.CreateRoom(ctx, name, s.User)
}

func (s *Session) JoinRoom(ctx context.Context, roomID string) (*models.Room, error) {
	return s.store.JoinRoom(ctx, roomID, s.User)
}

func (s *Session) DeleteRoom(ctx context.Context, roomID string) (*models.DeleteRoomResult, error) {
	return s.store.DeleteRoom(ctx, roomID, s.User.ID)
}

// SetPermission allows or blocks another member from decrypting this
// session's future messages in the room. Already-sent messages are not
// affected.
func (s *Session) SetPermission(ctx context.Context, roomID, toUserID string, allowed bool) error {
	return s.store.SetPermission(ctx, roomID, s.User.ID, toUserID, allowed)
}

// SendMessage fans the plaintext out to every currently-allowed member and
// persists the result. Which recipients can ever decrypt this message is
// fixed here, at send time.
func (s *Session) SendMessage(ctx context.Context, roomID, plaintext string) (*models.Message, error) {
	return s.send(ctx, roomID, plaintext, models.MessageTypeText, "")
}

// SendImage sends image data (a data URL) through the same fan-out path as
// text.
func (s *Session) SendImage(ctx context.Context, roomID, imageData, fileName string) (*models.Message, error) {
	return s.send(ctx, roomID, imageData, models.MessageTypeImage, fileName)
}

func (s *Session) send(ctx context.Context, roomID, plaintext, msgType, fileName string) (*models.Message, error) {
	view, err := s.roomView(ctx, roomID)
	if err != nil {
		return nil, err
	}

	ledger := NewPermissionLedger(view.Permissions)
	versions := s.fanout.EncryptForRoom(ctx, s.User, view.Members, ledger, roomID, plaintext)

	msg := models.Message{
		SenderID:          s.User.ID,
		SenderName:        s.User.Name,
		Content:           plaintext,
		EncryptedVersions: versions,
		RoomID:            roomID,
		MessageType:       msgType,
		FileName:          fileName,
	}
	return s.store.SendMessage(ctx, msg)
}

// Read resolves a message for this session's viewer. An empty string means
// the message is not visible and must not be rendered.
func (s *Session) Read(ctx context.Context, msg models.Message) string {
	return s.resolver.Resolve(ctx, msg, s.User.ID, s.privateKey)
}

// roomView serves sends from the mirror when it is warm and falls back to
// a direct snapshot fetch before the first tick.
func (s *Session) roomView(ctx context.Context, roomID string) (RoomView, error) {
	if view, ok := s.syncer.Room(roomID); ok {
		return view, nil
	}

	snap, err := s.store.FetchSnapshot(ctx)
	if err != nil {
		return RoomView{}, err
	}
	for _, view := range assembleViews(snap) {
		if view.ID == roomID {
			return view, nil
		}
	}
	return RoomView{}, storage.ErrNotFound
}
