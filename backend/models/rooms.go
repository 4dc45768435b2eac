// Copyright (C) 2025 veilroom <dev@veilroom.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package models

import "time"

// Room is a named chat room. The creator is always a member; membership
// only grows until the room itself is deleted by its creator.
type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Members   []User    `json:"members"`
	CreatorID string    `json:"creatorId"`
	CreatedAt time.Time `json:"createdAt"`
}

// HasMember reports whether userID is currently a member of the room.
func (r *Room) HasMember(userID string) bool {
	for _, m := range r.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// DeleteRoomResult reports what a cascading room deletion removed.
type DeleteRoomResult struct {
	DeletedRoom        Room `json:"deletedRoom"`
	DeletedMessages    int  `json:"deletedMessages"`
	DeletedPermissions int  `json:"deletedPermissions"`
}
