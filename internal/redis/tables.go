package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/playmatatu/pinball/internal/game"
	"github.com/redis/go-redis/v9"
)

// TableEventsChannel carries game.TableEvent payloads between servers.
const TableEventsChannel = "table_events"

// TableStore keeps table checkpoints in Redis and publishes table events.
type TableStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTableStore creates a store whose checkpoints expire after ttl.
func NewTableStore(rdb *redis.Client, ttl time.Duration) *TableStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TableStore{rdb: rdb, ttl: ttl}
}

func checkpointKey(tableID string) string {
	return "table:" + tableID + ":checkpoint"
}

// SaveCheckpoint stores the latest snapshot of a table.
func (s *TableStore) SaveCheckpoint(ctx context.Context, tableID string, snap game.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.rdb.SetEx(ctx, checkpointKey(tableID), data, s.ttl).Err()
}

// LoadCheckpoint returns the last stored snapshot of a table.
func (s *TableStore) LoadCheckpoint(ctx context.Context, tableID string) (game.Snapshot, error) {
	var snap game.Snapshot
	data, err := s.rdb.Get(ctx, checkpointKey(tableID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return snap, game.ErrTableNotFound
	}
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, err
	}
	return snap, nil
}

// PublishTableEvent publishes ev on TableEventsChannel.
func (s *TableStore) PublishTableEvent(ctx context.Context, ev game.TableEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.rdb.Publish(ctx, TableEventsChannel, data).Err()
}
