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

func (s *Store) Migrate() error {
	migrations := []string{
		// Rooms table
		`CREATE TABLE IF NOT EXISTS rooms (
			id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			creator_id VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// Room members table. User name and public key are denormalized
		// here so a snapshot needs no separate user registry.
		`CREATE TABLE IF NOT EXISTS room_members (
			room_id VARCHAR(255) NOT NULL,
			user_id VARCHAR(255) NOT NULL,
			user_name VARCHAR(255) NOT NULL,
			public_key TEXT NOT NULL,
			joined_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (room_id, user_id),
			FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE
		)`,

		// Messages table. One row per message; the per-recipient
		// ciphertext map is stored as JSONB.
		`CREATE TABLE IF NOT EXISTS messages (
			id VARCHAR(255) PRIMARY KEY,
			room_id VARCHAR(255) NOT NULL,
			sender_id VARCHAR(255) NOT NULL,
			sender_name VARCHAR(255) NOT NULL,
			content TEXT NOT NULL,
			encrypted_versions JSONB NOT NULL DEFAULT '{}',
			message_type VARCHAR(32) NOT NULL DEFAULT 'text',
			file_name VARCHAR(255),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_messages_room
		ON messages(room_id, created_at)`,

		// Permissions table. The primary key makes one record per
		// (from, to, room) triple; setting a permission upserts.
		`CREATE TABLE IF NOT EXISTS permissions (
			from_user_id VARCHAR(255) NOT NULL,
			to_user_id VARCHAR(255) NOT NULL,
			room_id VARCHAR(255) NOT NULL,
			allowed BOOLEAN NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (from_user_id, to_user_id, room_id),
			FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE
		)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}
