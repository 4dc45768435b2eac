// Copyright (C) 2025 veilroom <dev@veilroom.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package client

import (
	"sort"

	"github.com/veilroom/veilroom/backend/models"
)

// RoomView is a room with its messages and permissions attached, the shape
// the consuming layer renders from. Views are snapshots: read-only, rebuilt
// wholesale on every sync tick.
type RoomView struct {
	models.Room
	Messages    []models.Message
	Permissions []models.Permission
}

func assembleViews(snap *models.Snapshot) []RoomView {
	views := make([]RoomView, 0, len(snap.Rooms))

	for _, room := range snap.Rooms {
		view := RoomView{Room: room}
		for _, msg := range snap.Messages {
			if msg.RoomID == room.ID {
				view.Messages = append(view.Messages, msg)
			}
		}
		for _, perm := range snap.Permissions {
			if perm.RoomID == room.ID {
				view.Permissions = append(view.Permissions, perm)
			}
		}
		sort.SliceStable(view.Messages, func(i, j int) bool {
			return view.Messages[i].Timestamp.Before(view.Messages[j].Timestamp)
		})
		views = append(views, view)
	}
	return views
}
