// Copyright (C) 2025 veilroom <dev@veilroom.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package storage

import "errors"

var (
	// ErrNotFound means the referenced room no longer exists.
	ErrNotFound = errors.New("room not found")

	// ErrForbidden means the requester is not allowed to perform the
	// operation, e.g. a non-creator deleting a room.
	ErrForbidden = errors.New("operation not permitted")
)
