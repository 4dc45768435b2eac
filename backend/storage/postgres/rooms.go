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
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/veilroom/veilroom/backend/models"
	"github.com/veilroom/veilroom/backend/storage"
)

func (s *Store) CreateRoom(ctx context.Context, name string, creator models.User) (*models.Room, error) {
	room := models.Room{
		ID:        uuid.New().String(),
		Name:      name,
		Members:   []models.User{creator},
		CreatorID: creator.ID,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rooms (id, name, creator_id, created_at)
		VALUES ($1, $2, $3, $4)`,
		room.ID, room.Name, room.CreatorID, room.CreatedAt)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO room_members (room_id, user_id, user_name, public_key, joined_at)
		VALUES ($1, $2, $3, $4, $5)`,
		room.ID, creator.ID, creator.Name, creator.PublicKey, room.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return &room, nil
}

func (s *Store) JoinRoom(ctx context.Context, roomID string, user models.User) (*models.Room, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM rooms WHERE id = $1)`, roomID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, storage.ErrNotFound
	}

	// Joining twice is a no-op.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO room_members (room_id, user_id, user_name, public_key, joined_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (room_id, user_id) DO NOTHING`,
		roomID, user.ID, user.Name, user.PublicKey, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return s.getRoom(ctx, roomID)
}

func (s *Store) DeleteRoom(ctx context.Context, roomID, requesterID string) (*models.DeleteRoomResult, error) {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.CreatorID != requesterID {
		return nil, storage.ErrForbidden
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	result := models.DeleteRoomResult{DeletedRoom: *room}

	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE room_id = $1`, roomID).Scan(&result.DeletedMessages)
	if err != nil {
		return nil, err
	}
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM permissions WHERE room_id = $1`, roomID).Scan(&result.DeletedPermissions)
	if err != nil {
		return nil, err
	}

	// Members, messages and permissions go with the room via FK cascade.
	if _, err = tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, roomID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return &result, nil
}

func (s *Store) getRoom(ctx context.Context, roomID string) (*models.Room, error) {
	var room models.Room
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, creator_id, created_at FROM rooms
		WHERE id = $1`, roomID).Scan(
		&room.ID, &room.Name, &room.CreatorID, &room.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, user_name, public_key FROM room_members
		WHERE room_id = $1 ORDER BY joined_at, user_id`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var member models.User
		if err := rows.Scan(&member.ID, &member.Name, &member.PublicKey); err != nil {
			return nil, err
		}
		room.Members = append(room.Members, member)
	}
	return &room, rows.Err()
}

func (s *Store) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
