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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/veilroom/veilroom/backend/models"
	"github.com/veilroom/veilroom/backend/storage"
)

func (s *Store) SaveMessage(ctx context.Context, msg models.Message) error {
	versions, err := json.Marshal(msg.EncryptedVersions)
	if err != nil {
		return fmt.Errorf("failed to marshal encrypted versions: %w", err)
	}

	var fileName sql.NullString
	if msg.FileName != "" {
		fileName = sql.NullString{String: msg.FileName, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO messages (id, room_id, sender_id, sender_name, content,
			encrypted_versions, message_type, file_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		msg.ID, msg.RoomID, msg.SenderID, msg.SenderName, msg.Content,
		versions, msg.MessageType, fileName, msg.Timestamp)
	if err != nil {
		if isForeignKeyViolation(err) {
			return storage.ErrNotFound
		}
		return err
	}

	s.invalidate(ctx)
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return false
}
