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

	log "github.com/sirupsen/logrus"

	"github.com/veilroom/veilroom/backend/models"
	"github.com/veilroom/veilroom/crypto"
)

// Resolver performs decrypt-on-read: a message is decrypted only at the
// moment a specific viewer looks at it. It holds no mutable state and may
// be called concurrently for many messages.
type Resolver struct {
	provider crypto.Provider
}

func NewResolver(provider crypto.Provider) *Resolver {
	return &Resolver{provider: provider}
}

// Resolve returns the plaintext the viewer is entitled to see, or "" when
// the message is not visible to them. The empty string covers both "the
// sender never encrypted for this viewer" and "decryption failed"; callers
// must render nothing rather than an error.
func (r *Resolver) Resolve(ctx context.Context, msg models.Message, viewerID, viewerPrivateKey string) string {
	// The sender reads their own plaintext; no provider round-trip.
	if msg.SenderID == viewerID {
		return msg.Content
	}

	ciphertext, ok := msg.EncryptedVersions[viewerID]
	if !ok {
		return ""
	}

	plaintext, err := r.provider.Decrypt(ctx, viewerPrivateKey, ciphertext)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"message_id": msg.ID,
			"viewer_id":  viewerID,
		}).Debug("decrypt failed, hiding message")
		return ""
	}
	return plaintext
}
