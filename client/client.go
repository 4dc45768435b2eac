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

// Package client is the client-side core of veilroom: a thin HTTP adapter
// for the room store plus the permission ledger, fan-out encryptor,
// decrypt-on-read resolver and polling synchronizer that give every client
// an eventually consistent, per-viewer-decryptable view of its rooms.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/veilroom/veilroom/backend/models"
	"github.com/veilroom/veilroom/backend/storage"
)

// StoreError is a transport-level room store failure. It is retryable: the
// local mirror is left untouched and the initiating action may simply be
// tried again.
type StoreError struct {
	Op     string
	Status int
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s failed with status %d", e.Op, e.Status)
}

// Client talks to the room store service. All mutations round-trip through
// the store; local state is only ever updated by the synchronizer observing
// the next snapshot.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// WithToken returns a copy of the client that authenticates with the given
// bearer token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

func (c *Client) FetchSnapshot(ctx context.Context) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := c.do(ctx, "fetch snapshot", http.MethodGet, "/api/snapshot", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) CreateRoom(ctx context.Context, name string, creator models.User) (*models.Room, error) {
	req := map[string]interface{}{"name": name, "creator": creator}
	var resp struct {
		Room *models.Room `json:"room"`
	}
	if err := c.do(ctx, "create room", http.MethodPost, "/api/rooms", req, &resp); err != nil {
		return nil, err
	}
	return resp.Room, nil
}

func (c *Client) JoinRoom(ctx context.Context, roomID string, user models.User) (*models.Room, error) {
	req := map[string]interface{}{"user": user}
	var resp struct {
		Room *models.Room `json:"room"`
	}
	path := "/api/rooms/" + url.PathEscape(roomID) + "/join"
	if err := c.do(ctx, "join room", http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return resp.Room, nil
}

func (c *Client) DeleteRoom(ctx context.Context, roomID, requesterID string) (*models.DeleteRoomResult, error) {
	var result models.DeleteRoomResult
	path := "/api/rooms/" + url.PathEscape(roomID) + "?requester=" + url.QueryEscape(requesterID)
	if err := c.do(ctx, "delete room", http.MethodDelete, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) SendMessage(ctx context.Context, msg models.Message) (*models.Message, error) {
	var resp struct {
		Message *models.Message `json:"message"`
	}
	path := "/api/rooms/" + url.PathEscape(msg.RoomID) + "/messages"
	if err := c.do(ctx, "send message", http.MethodPost, path, msg, &resp); err != nil {
		return nil, err
	}
	return resp.Message, nil
}

func (c *Client) SetPermission(ctx context.Context, roomID, fromUserID, toUserID string, allowed bool) error {
	req := map[string]interface{}{
		"fromUserId": fromUserID,
		"toUserId":   toUserID,
		"allowed":    allowed,
	}
	path := "/api/rooms/" + url.PathEscape(roomID) + "/permissions"
	return c.do(ctx, "set permission", http.MethodPut, path, req, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("store: failed to marshal %s request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("store: %s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("store: %s: %w", op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return storage.ErrNotFound
	case resp.StatusCode == http.StatusForbidden:
		return storage.ErrForbidden
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &StoreError{Op: op, Status: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("store: failed to decode %s response: %w", op, err)
	}
	return nil
}
