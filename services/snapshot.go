package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/selamgames/bingo-server/game"
)

const snapshotKey = "bingo:lobby:%d:round"

// SnapshotStore persists the live round of each lobby in redis so a
// restarted process can resume an interrupted round. Snapshots older than
// maxAge are treated as invalid and the lobby starts fresh.
type SnapshotStore struct {
	client *redis.Client
	maxAge time.Duration
}

func NewSnapshotStore(addr, password string, db int, maxAge time.Duration) (*SnapshotStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &SnapshotStore{client: client, maxAge: maxAge}, nil
}

func (s *SnapshotStore) Close() error {
	return s.client.Close()
}

// Save stores the snapshot, expiring it at twice the staleness window so
// dead lobbies do not litter redis.
func (s *SnapshotStore) Save(ctx context.Context, stake int, snap game.RoundSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, fmt.Sprintf(snapshotKey, stake), data, 2*s.maxAge).Err()
}

// Load fetches the snapshot for a stake. It returns (nil, nil) when there is
// no usable snapshot: missing key or one outside the staleness window.
func (s *SnapshotStore) Load(ctx context.Context, stake int) (*game.RoundSnapshot, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(snapshotKey, stake)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap game.RoundSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	if Stale(snap, time.Now(), s.maxAge) {
		return nil, nil
	}
	return &snap, nil
}

// Clear drops the snapshot for a stake; called once a round ends cleanly.
func (s *SnapshotStore) Clear(ctx context.Context, stake int) error {
	return s.client.Del(ctx, fmt.Sprintf(snapshotKey, stake)).Err()
}

// Stale reports whether a snapshot is outside the staleness window.
func Stale(snap game.RoundSnapshot, now time.Time, maxAge time.Duration) bool {
	return snap.SavedAt.IsZero() || now.Sub(snap.SavedAt) > maxAge
}
