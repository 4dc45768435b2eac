// Copyright (C) 2025 veilroom <dev@veilroom.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/veilroom/veilroom/backend/models"
)

const (
	snapshotKey = "veilroom:snapshot"

	// Short TTL: polling clients converge within a tick anyway, the cache
	// only absorbs the fan-in of many clients polling at once.
	snapshotTTL = 2 * time.Second
)

// SnapshotCache keeps the latest serialized store snapshot in redis. Writers
// invalidate it; a miss just falls through to the database. Cache failures
// are fail-soft and logged, never surfaced to callers.
type SnapshotCache struct {
	rdb *redis.Client
}

func NewSnapshotCache(rdb *redis.Client) *SnapshotCache {
	return &SnapshotCache{rdb: rdb}
}

func (c *SnapshotCache) Get(ctx context.Context) (*models.Snapshot, bool) {
	data, err := c.rdb.Get(ctx, snapshotKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.WithError(err).Warn("snapshot cache read failed")
		return nil, false
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.WithError(err).Warn("snapshot cache held malformed data")
		return nil, false
	}
	return &snap, true
}

func (c *SnapshotCache) Set(ctx context.Context, snap *models.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.WithError(err).Warn("failed to marshal snapshot for cache")
		return
	}
	if err := c.rdb.Set(ctx, snapshotKey, data, snapshotTTL).Err(); err != nil {
		log.WithError(err).Warn("snapshot cache write failed")
	}
}

func (c *SnapshotCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, snapshotKey).Err(); err != nil {
		log.WithError(err).Warn("snapshot cache invalidation failed")
	}
}
