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

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/veilroom/veilroom/backend/models"
	"github.com/veilroom/veilroom/backend/storage"
)

type PermissionHandler struct {
	store storage.RoomStore
}

func NewPermissionHandler(store storage.RoomStore) *PermissionHandler {
	return &PermissionHandler{store: store}
}

// SetPermission records that fromUser allows or blocks toUser from
// decrypting fromUser's future messages in this room. The store keeps at
// most one record per triple, so setting twice is idempotent.
func (h *PermissionHandler) SetPermission(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID := vars["roomId"]

	var req struct {
		FromUserID string `json:"fromUserId"`
		ToUserID   string `json:"toUserId"`
		Allowed    bool   `json:"allowed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.FromUserID == "" || req.ToUserID == "" {
		http.Error(w, "fromUserId and toUserId are required", http.StatusBadRequest)
		return
	}

	perm := models.Permission{
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		RoomID:     roomID,
		Allowed:    req.Allowed,
		Timestamp:  time.Now().UTC(),
	}

	if err := h.store.SetPermission(r.Context(), perm); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Room not found", http.StatusNotFound)
			return
		}
		log.WithError(err).WithField("room_id", roomID).Error("failed to set permission")
		http.Error(w, "Failed to set permission", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"permission": perm})
}
