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

package models

import "time"

// Permission records that FromUserID currently allows (or blocks) ToUserID
// from decrypting FromUserID's future messages in RoomID. Absence of a
// record means allowed. Setting a permission replaces any prior record for
// the same (from, to, room) triple.
type Permission struct {
	FromUserID string    `json:"fromUserId"`
	ToUserID   string    `json:"toUserId"`
	RoomID     string    `json:"roomId"`
	Allowed    bool      `json:"allowed"`
	Timestamp  time.Time `json:"timestamp"`
}

// Snapshot is the full authoritative state of the room store at one point
// in time. Clients replace their local mirror with it wholesale.
type Snapshot struct {
	Rooms       []Room       `json:"rooms"`
	Messages    []Message    `json:"messages"`
	Permissions []Permission `json:"permissions"`
}
