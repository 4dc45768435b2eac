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

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/veilroom/veilroom/backend/models"
	"github.com/veilroom/veilroom/backend/storage"
)

type MessageHandler struct {
	store storage.RoomStore
}

func NewMessageHandler(store storage.RoomStore) *MessageHandler {
	return &MessageHandler{store: store}
}

// SendMessage persists an already fanned-out message. Encryption happens on
// the sending client; the store only ever sees the per-recipient ciphertext
// map the sender assembled.
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID := vars["roomId"]

	var msg models.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "Invalid message", http.StatusBadRequest)
		return
	}
	if msg.SenderID == "" {
		http.Error(w, "Sender is required", http.StatusBadRequest)
		return
	}

	msg.ID = uuid.New().String()
	msg.RoomID = roomID
	msg.Timestamp = time.Now().UTC()
	if msg.MessageType == "" {
		msg.MessageType = models.MessageTypeText
	}
	if msg.EncryptedVersions == nil {
		msg.EncryptedVersions = map[string]string{}
	}

	if err := h.store.SaveMessage(r.Context(), msg); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Room not found", http.StatusNotFound)
			return
		}
		log.WithError(err).WithField("room_id", roomID).Error("failed to save message")
		http.Error(w, "Failed to save message", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{"message": msg})
}
