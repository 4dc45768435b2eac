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

package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/veilroom/veilroom/backend/models"
)

func (s *Store) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	if s.cache != nil {
		if snap, ok := s.cache.Get(ctx); ok {
			return snap, nil
		}
	}

	snap := &models.Snapshot{
		Rooms:       []models.Room{},
		Messages:    []models.Message{},
		Permissions: []models.Permission{},
	}

	if err := s.loadRooms(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadMessages(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadPermissions(ctx, snap); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, snap)
	}
	return snap, nil
}

func (s *Store) loadRooms(ctx context.Context, snap *models.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, creator_id, created_at FROM rooms
		ORDER BY created_at, id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	index := map[string]int{}
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.CreatorID, &room.CreatedAt); err != nil {
			return err
		}
		index[room.ID] = len(snap.Rooms)
		snap.Rooms = append(snap.Rooms, room)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	members, err := s.db.QueryContext(ctx, `
		SELECT room_id, user_id, user_name, public_key FROM room_members
		ORDER BY joined_at, user_id`)
	if err != nil {
		return err
	}
	defer members.Close()

	for members.Next() {
		var roomID string
		var member models.User
		if err := members.Scan(&roomID, &member.ID, &member.Name, &member.PublicKey); err != nil {
			return err
		}
		if i, ok := index[roomID]; ok {
			snap.Rooms[i].Members = append(snap.Rooms[i].Members, member)
		}
	}
	return members.Err()
}

func (s *Store) loadMessages(ctx context.Context, snap *models.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_id, sender_id, sender_name, content,
			encrypted_versions, message_type, COALESCE(file_name, ''), created_at
		FROM messages ORDER BY created_at, id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var msg models.Message
		var versions []byte
		if err := rows.Scan(&msg.ID, &msg.RoomID, &msg.SenderID, &msg.SenderName,
			&msg.Content, &versions, &msg.MessageType, &msg.FileName, &msg.Timestamp); err != nil {
			return err
		}
		if err := json.Unmarshal(versions, &msg.EncryptedVersions); err != nil {
			return fmt.Errorf("failed to unmarshal encrypted versions: %w", err)
		}
		snap.Messages = append(snap.Messages, msg)
	}
	return rows.Err()
}

func (s *Store) loadPermissions(ctx context.Context, snap *models.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT from_user_id, to_user_id, room_id, allowed, created_at
		FROM permissions ORDER BY created_at`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var perm models.Permission
		if err := rows.Scan(&perm.FromUserID, &perm.ToUserID, &perm.RoomID,
			&perm.Allowed, &perm.Timestamp); err != nil {
			return err
		}
		snap.Permissions = append(snap.Permissions, perm)
	}
	return rows.Err()
}
