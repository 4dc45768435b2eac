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
	"golang.org/x/sync/errgroup"

	"github.com/veilroom/veilroom/backend/models"
	"github.com/veilroom/veilroom/crypto"
)

const (
	// Ceiling on concurrent provider calls during one fan-out.
	defaultFanoutParallelism = 8

	// Per-recipient encryption deadline. A timeout counts as an ordinary
	// encryption failure: that one recipient is omitted, the send goes on.
	defaultEncryptTimeout = 5 * time.Second
)

// Per-recipient fan-out outcomes. Blocked and failed recipients look
// identical on the wire (no map entry); the distinction exists only here,
// for logging.
type deliveryStatus int

const (
	statusEncrypted deliveryStatus = iota
	statusBlocked
	statusFailed
)

type recipientOutcome struct {
	recipient models.User
	status    deliveryStatus
	err       error
}

// Fanout turns one plaintext into at most one ciphertext per eligible room
// member. Eligibility is decided by the permission ledger at send time and
// never revisited: recipients omitted now can never decrypt this message,
// recipients included now keep access no matter how permissions change
// later.
type Fanout struct {
	provider       crypto.Provider
	encryptTimeout time.Duration
	parallelism    int
}

func NewFanout(provider crypto.Provider) *Fanout {
	return &Fanout{
		provider:       provider,
		encryptTimeout: defaultEncryptTimeout,
		parallelism:    defaultFanoutParallelism,
	}
}

// EncryptForRoom produces the per-recipient ciphertext map for one message.
// The sender is skipped (they read their own plaintext), blocked members
// are skipped without touching the provider, and a provider failure for one
// recipient omits that recipient without aborting the rest.
func (f *Fanout) EncryptForRoom(ctx context.Context, sender models.User, members []models.User,
	ledger *PermissionLedger, roomID, plaintext string) map[string]string {

	versions := make(map[string]string)
	outcomes := make([]recipientOutcome, 0, len(members))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.parallelism)

	for _, member := range members {
		if member.ID == sender.ID {
			continue
		}

		if !ledger.IsAllowed(sender.ID, member.ID, roomID) {
			mu.Lock()
			outcomes = append(outcomes, recipientOutcome{recipient: member, status: statusBlocked})
			mu.Unlock()
			continue
		}

		member := member
		g.Go(func() error {
			encCtx, cancel := context.WithTimeout(gctx, f.encryptTimeout)
			defer cancel()

			ciphertext, err := f.provider.Encrypt(encCtx, member.PublicKey, plaintext)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				outcomes = append(outcomes, recipientOutcome{recipient: member, status: statusFailed, err: err})
				return nil
			}
			versions[member.ID] = ciphertext
			outcomes = append(outcomes, recipientOutcome{recipient: member, status: statusEncrypted})
			return nil
		})
	}

	// Workers never return errors; partial failure must not abort the send.
	g.Wait()

	for _, o := range outcomes {
		switch o.status {
		case statusBlocked:
			log.WithFields(log.Fields{
				"room_id":      roomID,
				"sender_id":    sender.ID,
				"recipient_id": o.recipient.ID,
			}).Debug("recipient blocked, no ciphertext produced")
		case statusFailed:
			log.WithError(o.err).WithFields(log.Fields{
				"room_id":      roomID,
				"sender_id":    sender.ID,
				"recipient_id": o.recipient.ID,
			}).Warn("encryption failed, recipient omitted")
		}
	}

	return versions
}
