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

package service

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/veilroom/veilroom/backend/handlers"
	"github.com/veilroom/veilroom/backend/storage"
	"github.com/veilroom/veilroom/crypto"
)

// Service bundles the room store API so it can be mounted standalone or
// embedded into a host application's router.
type Service struct {
	store       storage.RoomStore
	rooms       *handlers.RoomHandler
	messages    *handlers.MessageHandler
	permissions *handlers.PermissionHandler
	snapshot    *handlers.SnapshotHandler
	crypto      *handlers.CryptoHandler
}

func New(store storage.RoomStore, provider crypto.Provider) *Service {
	return &Service{
		store:       store,
		rooms:       handlers.NewRoomHandler(store),
		messages:    handlers.NewMessageHandler(store),
		permissions: handlers.NewPermissionHandler(store),
		snapshot:    handlers.NewSnapshotHandler(store),
		crypto:      handlers.NewCryptoHandler(provider),
	}
}

// Store returns the underlying room store.
func (s *Service) Store() storage.RoomStore {
	return s.store
}

// RegisterRoutes adds the API routes to an existing router. If
// authMiddleware is nil the API is open, as in single-tenant deployments.
func (s *Service) RegisterRoutes(router *mux.Router, authMiddleware func(http.Handler) http.Handler) {
	api := router.PathPrefix("/api").Subrouter()

	if authMiddleware != nil {
		api.Use(authMiddleware)
	}

	// Room lifecycle
	api.HandleFunc("/rooms", s.rooms.CreateRoom).Methods("POST", "OPTIONS")
	api.HandleFunc("/rooms/{roomId}/join", s.rooms.JoinRoom).Methods("POST", "OPTIONS")
	api.HandleFunc("/rooms/{roomId}", s.rooms.DeleteRoom).Methods("DELETE", "OPTIONS")

	// Messages and permissions
	api.HandleFunc("/rooms/{roomId}/messages", s.messages.SendMessage).Methods("POST", "OPTIONS")
	api.HandleFunc("/rooms/{roomId}/permissions", s.permissions.SetPermission).Methods("PUT", "OPTIONS")

	// Snapshot polled by clients
	api.HandleFunc("/snapshot", s.snapshot.GetSnapshot).Methods("GET", "OPTIONS")

	// Crypto provider facade for clients that cannot link it directly
	api.HandleFunc("/crypto/keypair", s.crypto.GenerateKeyPair).Methods("GET", "OPTIONS")
	api.HandleFunc("/crypto/encrypt", s.crypto.Encrypt).Methods("POST", "OPTIONS")
	api.HandleFunc("/crypto/decrypt", s.crypto.Decrypt).Methods("POST", "OPTIONS")
	api.HandleFunc("/crypto/dssecrt", s.crypto.DeriveSharedSecret).Methods("POST", "OPTIONS")
}
