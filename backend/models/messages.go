// Copyright (C) 2025 veilroom <dev@veilroom.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package models

import "time"

// Message types.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
)

// Message is a room message with one independently encrypted version per
// eligible recipient. Content stays in cleartext for the sender's own
// self-read; every other viewer goes through EncryptedVersions. A missing
// entry for a recipient means that recipient never sees the message; the
// wire does not distinguish a blocked recipient from a failed encryption.
type Message struct {
	ID                string            `json:"id"`
	SenderID          string            `json:"senderId"`
	SenderName        string            `json:"senderName"`
	Content           string            `json:"content"`
	EncryptedVersions map[string]string `json:"encryptedVersions"`
	Timestamp         time.Time         `json:"timestamp"`
	RoomID            string            `json:"roomId"`
	MessageType       string            `json:"messageType"`
	FileName          string            `json:"fileName,omitempty"`
}
