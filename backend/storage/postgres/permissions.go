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

	"github.com/veilroom/veilroom/backend/models"
	"github.com/veilroom/veilroom/backend/storage"
)

func (s *Store) SetPermission(ctx context.Context, perm models.Permission) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO permissions (from_user_id, to_user_id, room_id, allowed, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (from_user_id, to_user_id, room_id) DO UPDATE
		SET allowed = $4, created_at = $5`,
		perm.FromUserID, perm.ToUserID, perm.RoomID, perm.Allowed, perm.Timestamp)
	if err != nil {
		if isForeignKeyViolation(err) {
			return storage.ErrNotFound
		}
		return err
	}

	s.invalidate(ctx)
	return nil
}
