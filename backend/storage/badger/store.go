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

// Package badger is the embedded, file-backed room store. It serves
// single-node deployments that have no postgres around, and doubles as the
// in-memory store the test suites run against.
package badger

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/veilroom/veilroom/backend/models"
	"github.com/veilroom/veilroom/backend/storage"
)

const (
	roomPrefix = "room:"
	msgPrefix  = "msg:"
	permPrefix = "perm:"
)

type Store struct {
	db *badger.DB
}

// Open opens (or creates) a store at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a store that lives entirely in memory.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func roomKey(roomID string) []byte {
	return []byte(roomPrefix + roomID)
}

func msgKey(msgID string) []byte {
	return []byte(msgPrefix + msgID)
}

func permKey(from, to, roomID string) []byte {
	return []byte(permPrefix + from + ":" + to + ":" + roomID)
}

func (s *Store) CreateRoom(ctx context.Context, name string, creator models.User) (*models.Room, error) {
	room := models.Room{
		ID:        uuid.New().String(),
		Name:      name,
		Members:   []models.User{creator},
		CreatorID: creator.ID,
		CreatedAt: time.Now().UTC(),
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return putJSON(txn, roomKey(room.ID), room)
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Store) JoinRoom(ctx context.Context, roomID string, user models.User) (*models.Room, error) {
	var room models.Room

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getJSON(txn, roomKey(roomID), &room); err != nil {
			return err
		}
		if room.HasMember(user.ID) {
			return nil
		}
		room.Members = append(room.Members, user)
		return putJSON(txn, roomKey(roomID), room)
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Store) DeleteRoom(ctx context.Context, roomID, requesterID string) (*models.DeleteRoomResult, error) {
	var result models.DeleteRoomResult

	err := s.db.Update(func(txn *badger.Txn) error {
		var room models.Room
		if err := getJSON(txn, roomKey(roomID), &room); err != nil {
			return err
		}
		if room.CreatorID != requesterID {
			return storage.ErrForbidden
		}
		result.DeletedRoom = room

		// Collect every message and permission belonging to the room,
		// then drop them together with the room record.
		doomed := [][]byte{roomKey(roomID)}

		err := scanJSON(txn, msgPrefix, func(key []byte, raw []byte) error {
			var msg models.Message
			if err := json.Unmarshal(raw, &msg); err != nil {
				return err
			}
			if msg.RoomID == roomID {
				doomed = append(doomed, append([]byte(nil), key...))
				result.DeletedMessages++
			}
			return nil
		})
		if err != nil {
			return err
		}

		err = scanJSON(txn, permPrefix, func(key []byte, raw []byte) error {
			var perm models.Permission
			if err := json.Unmarshal(raw, &perm); err != nil {
				return err
			}
			if perm.RoomID == roomID {
				doomed = append(doomed, append([]byte(nil), key...))
				result.DeletedPermissions++
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, key := range doomed {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Store) SaveMessage(ctx context.Context, msg models.Message) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var room models.Room
		if err := getJSON(txn, roomKey(msg.RoomID), &room); err != nil {
			return err
		}
		return putJSON(txn, msgKey(msg.ID), msg)
	})
}

func (s *Store) SetPermission(ctx context.Context, perm models.Permission) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var room models.Room
		if err := getJSON(txn, roomKey(perm.RoomID), &room); err != nil {
			return err
		}
		// The key encodes the triple, so a second set for the same
		// triple overwrites the first record.
		return putJSON(txn, permKey(perm.FromUserID, perm.ToUserID, perm.RoomID), perm)
	})
}

func (s *Store) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{
		Rooms:       []models.Room{},
		Messages:    []models.Message{},
		Permissions: []models.Permission{},
	}

	err := s.db.View(func(txn *badger.Txn) error {
		err := scanJSON(txn, roomPrefix, func(_ []byte, raw []byte) error {
			var room models.Room
			if err := json.Unmarshal(raw, &room); err != nil {
				return err
			}
			snap.Rooms = append(snap.Rooms, room)
			return nil
		})
		if err != nil {
			return err
		}

		err = scanJSON(txn, msgPrefix, func(_ []byte, raw []byte) error {
			var msg models.Message
			if err := json.Unmarshal(raw, &msg); err != nil {
				return err
			}
			snap.Messages = append(snap.Messages, msg)
			return nil
		})
		if err != nil {
			return err
		}

		return scanJSON(txn, permPrefix, func(_ []byte, raw []byte) error {
			var perm models.Permission
			if err := json.Unmarshal(raw, &perm); err != nil {
				return err
			}
			snap.Permissions = append(snap.Permissions, perm)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// Badger iterates in key order; restore the store's documented orders.
	sort.Slice(snap.Rooms, func(i, j int) bool {
		if !snap.Rooms[i].CreatedAt.Equal(snap.Rooms[j].CreatedAt) {
			return snap.Rooms[i].CreatedAt.Before(snap.Rooms[j].CreatedAt)
		}
		return snap.Rooms[i].ID < snap.Rooms[j].ID
	})
	sort.Slice(snap.Messages, func(i, j int) bool {
		if !snap.Messages[i].Timestamp.Equal(snap.Messages[j].Timestamp) {
			return snap.Messages[i].Timestamp.Before(snap.Messages[j].Timestamp)
		}
		return snap.Messages[i].ID < snap.Messages[j].ID
	})
	return snap, nil
}

func putJSON(txn *badger.Txn, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

func getJSON(txn *badger.Txn, key []byte, v interface{}) error {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return storage.ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(raw []byte) error {
		return json.Unmarshal(raw, v)
	})
}

func scanJSON(txn *badger.Txn, prefix string, fn func(key, raw []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		err := item.Value(func(raw []byte) error {
			return fn(item.Key(), raw)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
