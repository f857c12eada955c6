package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/splatform/playback-engine/pkg/experience"
	"github.com/splatform/playback-engine/pkg/player"
)

// snapshotTTL bounds how long a saved session snapshot is retained.
const snapshotTTL = 24 * time.Hour

// RedisStorage implements Storage using Redis for session snapshots and
// the filesystem for static experience documents.
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	dataDir string
}

var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage connects to Redis at redisURL and serves experience
// documents from dataDir (one <name>.json per experience).
func NewRedisStorage(redisURL string, dataDir string, logger *slog.Logger) (*RedisStorage, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	if dataDir == "" {
		dataDir = "./data"
	}

	return &RedisStorage{
		client:  redis.NewClient(opt),
		logger:  logger,
		dataDir: dataDir,
	}, nil
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Experience operations (filesystem-backed)

func (r *RedisStorage) ListExperiences(ctx context.Context) ([]string, error) {
	var names []string

	err := filepath.WalkDir(r.dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		names = append(names, strings.TrimSuffix(filepath.Base(path), ".json"))
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to walk data directory", "error", err)
		return nil, fmt.Errorf("failed to list experiences: %w", err)
	}

	sort.Strings(names)
	return names, nil
}

func (r *RedisStorage) GetExperience(ctx context.Context, name string) (*experience.Experience, error) {
	path := filepath.Join(r.dataDir, name+".json")

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("experience %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read experience file: %w", err)
	}

	var exp experience.Experience
	if err := json.Unmarshal(file, &exp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal experience %q: %w", name, err)
	}
	exp.FileName = filepath.Base(path)

	return &exp, nil
}

// Snapshot operations (Redis-backed)

func snapshotKey(id uuid.UUID) string {
	return "playback:snapshot:" + id.String()
}

func (r *RedisStorage) SaveSnapshot(ctx context.Context, sessionID uuid.UUID, state *player.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		r.logger.Error("Failed to marshal snapshot", "session", sessionID, "error", err)
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := r.client.Set(ctx, snapshotKey(sessionID), data, snapshotTTL).Err(); err != nil {
		r.logger.Error("Failed to save snapshot", "session", sessionID, "error", err)
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (r *RedisStorage) GetSnapshot(ctx context.Context, sessionID uuid.UUID) (*player.State, error) {
	data, err := r.client.Get(ctx, snapshotKey(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("snapshot %s: %w", sessionID, ErrNotFound)
		}
		r.logger.Error("Failed to load snapshot", "session", sessionID, "error", err)
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var st player.State
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &st, nil
}

func (r *RedisStorage) DeleteSnapshot(ctx context.Context, sessionID uuid.UUID) error {
	if err := r.client.Del(ctx, snapshotKey(sessionID)).Err(); err != nil {
		r.logger.Error("Failed to delete snapshot", "session", sessionID, "error", err)
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
