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

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/veilroom/veilroom/backend/models"
	"github.com/veilroom/veilroom/backend/storage"
)

type RoomHandler struct {
	store storage.RoomStore
}

func NewRoomHandler(store storage.RoomStore) *RoomHandler {
	return &RoomHandler{store: store}
}

func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string      `json:"name"`
		Creator models.User `json:"creator"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Creator.ID == "" {
		http.Error(w, "Room name and creator are required", http.StatusBadRequest)
		return
	}

	room, err := h.store.CreateRoom(r.Context(), req.Name, req.Creator)
	if err != nil {
		log.WithError(err).Error("failed to create room")
		http.Error(w, "Failed to create room", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{"room": room})
}

func (h *RoomHandler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID := vars["roomId"]

	var req struct {
		User models.User `json:"user"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.User.ID == "" {
		http.Error(w, "User is required", http.StatusBadRequest)
		return
	}

	room, err := h.store.JoinRoom(r.Context(), roomID, req.User)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Room not found", http.StatusNotFound)
			return
		}
		log.WithError(err).WithField("room_id", roomID).Error("failed to join room")
		http.Error(w, "Failed to join room", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"room": room})
}

func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID := vars["roomId"]
	requesterID := r.URL.Query().Get("requester")

	if requesterID == "" {
		http.Error(w, "Requester is required", http.StatusBadRequest)
		return
	}

	result, err := h.store.DeleteRoom(r.Context(), roomID, requesterID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Room not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, storage.ErrForbidden) {
			http.Error(w, "Only the room creator can delete this room", http.StatusForbidden)
			return
		}
		log.WithError(err).WithField("room_id", roomID).Error("failed to delete room")
		http.Error(w, "Failed to delete room", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
