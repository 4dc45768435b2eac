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

package storage

import (
	"context"

	"github.com/veilroom/veilroom/backend/models"
)

type RoomStore interface {
	// CreateRoom creates a room with the creator as its only member.
	CreateRoom(ctx context.Context, name string, creator models.User) (*models.Room, error)

	// JoinRoom adds user to the room's member list. Joining a room the
	// user already belongs to is a no-op and returns the room unchanged.
	JoinRoom(ctx context.Context, roomID string, user models.User) (*models.Room, error)

	// DeleteRoom removes the room together with all of its messages and
	// permissions. Only the creator may delete a room; anyone else gets
	// ErrForbidden and the records stay intact.
	DeleteRoom(ctx context.Context, roomID, requesterID string) (*models.DeleteRoomResult, error)

	SaveMessage(ctx context.Context, msg models.Message) error

	// SetPermission replaces any existing record for the same
	// (from, to, room) triple. Last write wins.
	SetPermission(ctx context.Context, perm models.Permission) error

	// Snapshot returns the full current state of the store. Messages are
	// ordered by timestamp, then id.
	Snapshot(ctx context.Context) (*models.Snapshot, error)
}
