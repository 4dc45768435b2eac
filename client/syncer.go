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

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/veilroom/veilroom/backend/models"
)

const defaultPollInterval = 3 * time.Second

// SnapshotFetcher is the slice of the store client the syncer needs.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context) (*models.Snapshot, error)
}

// Syncer keeps a local mirror of the room store by polling full snapshots
// and replacing the mirror wholesale (last fetch wins, no delta merging).
// The mirror is owned by the syncer; everything else reads it as an
// immutable snapshot and mutates only by round-tripping through the store.
type Syncer struct {
	fetcher  SnapshotFetcher
	interval time.Duration

	mu    sync.RWMutex
	snap  *models.Snapshot
	views []RoomView
	// gen guards against a late fetch resurrecting state after Stop: a
	// tick only installs its result if the generation it started under
	// is still current.
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSyncer(fetcher SnapshotFetcher, interval time.Duration) *Syncer {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Syncer{fetcher: fetcher, interval: interval}
}

// Start begins polling on behalf of userID until Stop is called. Starting
// an already started syncer is a no-op.
func (s *Syncer) Start(userID string) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	log.WithField("user_id", userID).Debug("sync started")

	go func() {
		defer close(done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		// Prime the mirror immediately rather than waiting a full
		// interval for the first state.
		s.tick(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Stop halts polling. Any in-flight fetch is cancelled and its result,
// should it still arrive, is discarded.
func (s *Syncer) Stop() {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.gen++
	s.mu.Unlock()

	cancel()
	<-done
	log.Debug("sync stopped")
}

// Tick performs one fetch-and-reconcile synchronously. Tests drive the
// state machine with it instead of waiting on the wall clock.
func (s *Syncer) Tick(ctx context.Context) error {
	return s.tick(ctx)
}

func (s *Syncer) tick(ctx context.Context) error {
	s.mu.RLock()
	startGen := s.gen
	s.mu.RUnlock()

	snap, err := s.fetcher.FetchSnapshot(ctx)
	if err != nil {
		// Fail soft: keep the previous mirror, the next tick retries.
		log.WithError(err).Warn("snapshot poll failed, keeping stale mirror")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != startGen {
		// Stopped (or restarted) while the fetch was in flight.
		return nil
	}
	s.snap = snap
	s.views = assembleViews(snap)
	return nil
}

// Rooms returns the current mirror as assembled room views.
func (s *Syncer) Rooms() []RoomView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.views
}

// Room returns the view of one room, if the mirror has it.
func (s *Syncer) Room(roomID string) (RoomView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, view := range s.views {
		if view.ID == roomID {
			return view, true
		}
	}
	return RoomView{}, false
}

// Snapshot returns the raw mirrored snapshot, or nil before the first
// successful tick.
func (s *Syncer) Snapshot() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}
