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
	"database/sql"

	"github.com/redis/go-redis/v9"

	redisStore "github.com/veilroom/veilroom/backend/storage/redis"
)

// Store is the postgres-backed room store. When a redis client is provided,
// full snapshots are served from a short-lived cache that every write
// invalidates; polling clients then hit postgres at most once per TTL.
type Store struct {
	db    *sql.DB
	cache *redisStore.SnapshotCache
}

func NewStore(db *sql.DB, rdb *redis.Client) *Store {
	s := &Store{db: db}
	if rdb != nil {
		s.cache = redisStore.NewSnapshotCache(rdb)
	}
	return s
}
