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

import "github.com/veilroom/veilroom/backend/models"

// PermissionLedger answers "does fromUser currently allow toUser to decrypt
// their future messages in this room" over a snapshot of permission
// records. It is a pure read-only view: mutations go through the store and
// arrive with the next snapshot.
type PermissionLedger struct {
	perms []models.Permission
}

func NewPermissionLedger(perms []models.Permission) *PermissionLedger {
	return &PermissionLedger{perms: perms}
}

// IsAllowed is total over all (from, to, room) triples: no record means
// allowed. The store keeps one record per triple, but if duplicates ever
// coexist the latest timestamp is authoritative.
func (l *PermissionLedger) IsAllowed(fromUserID, toUserID, roomID string) bool {
	allowed := true
	var found bool
	var latest models.Permission

	for _, p := range l.perms {
		if p.FromUserID != fromUserID || p.ToUserID != toUserID || p.RoomID != roomID {
			continue
		}
		if !found || p.Timestamp.After(latest.Timestamp) {
			latest = p
			found = true
		}
	}
	if found {
		allowed = latest.Allowed
	}
	return allowed
}
