package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"coworking-reservation-server/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	workspaceCacheKeyPrefix = "workspace:"
	workspaceListCacheKey   = "workspaces:active"
	workspaceCacheGenKey    = "workspaces:generation"
)

var errStaleCacheFill = errors.New("cache generation moved during load")

// CachedWorkspaceRepository puts a Redis read-through cache in front of the
// catalog reads. Loads used for booking decisions always hit the database.
// Cache failures degrade to the underlying repository.
//
// Every write bumps a generation counter alongside the invalidation. A load
// only fills the cache if the generation is still the one it saw before
// hitting the database, so a read racing a Deactivate never leaves the
// pre-deactivation row behind.
type CachedWorkspaceRepository struct {
	next   WorkspaceRepository
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCachedWorkspaceRepository(next WorkspaceRepository, client *redis.Client, ttl time.Duration, logger zerolog.Logger) *CachedWorkspaceRepository {
	return &CachedWorkspaceRepository{
		next:   next,
		redis:  client,
		ttl:    ttl,
		logger: logger.With().Str("component", "workspace_cache").Logger(),
	}
}

func (c *CachedWorkspaceRepository) Create(ctx context.Context, ws *domain.Workspace) error {
	if err := c.next.Create(ctx, ws); err != nil {
		return err
	}
	c.invalidate(ctx, workspaceListCacheKey)
	return nil
}

func (c *CachedWorkspaceRepository) GetByID(ctx context.Context, id string) (*domain.Workspace, error) {
	key := workspaceCacheKeyPrefix + id

	var ws domain.Workspace
	if c.readCache(ctx, key, &ws) {
		return &ws, nil
	}

	gen, cacheable := c.generation(ctx)
	loaded, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cacheable {
		c.writeCache(ctx, key, gen, loaded)
	}
	return loaded, nil
}

func (c *CachedWorkspaceRepository) ListActive(ctx context.Context) ([]*domain.Workspace, error) {
	var cached []*domain.Workspace
	if c.readCache(ctx, workspaceListCacheKey, &cached) {
		return cached, nil
	}

	gen, cacheable := c.generation(ctx)
	list, err := c.next.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if cacheable {
		c.writeCache(ctx, workspaceListCacheKey, gen, list)
	}
	return list, nil
}

func (c *CachedWorkspaceRepository) GetWithActiveReservations(ctx context.Context, id string) (*domain.Workspace, error) {
	return c.next.GetWithActiveReservations(ctx, id)
}

func (c *CachedWorkspaceRepository) Deactivate(ctx context.Context, id string) error {
	if err := c.next.Deactivate(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, workspaceCacheKeyPrefix+id, workspaceListCacheKey)
	return nil
}

func (c *CachedWorkspaceRepository) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.ttl <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache entry corrupt")
		return false
	}
	return true
}

func (c *CachedWorkspaceRepository) generation(ctx context.Context) (string, bool) {
	if c.redis == nil || c.ttl <= 0 {
		return "", false
	}
	gen, err := c.redis.Get(ctx, workspaceCacheGenKey).Result()
	if err == redis.Nil {
		return "0", true
	}
	if err != nil {
		c.logger.Warn().Err(err).Msg("cache generation read failed")
		return "", false
	}
	return gen, true
}

// writeCache stores val under key unless a write bumped the generation since
// gen was read.
func (c *CachedWorkspaceRepository) writeCache(ctx context.Context, key, gen string, val any) {
	data, err := json.Marshal(val)
	if err != nil {
		return
	}

	err = c.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, workspaceCacheGenKey).Result()
		if err == redis.Nil {
			current = "0"
		} else if err != nil {
			return err
		}
		if current != gen {
			return errStaleCacheFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			return nil
		})
		return err
	}, workspaceCacheGenKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleCacheFill), errors.Is(err, redis.TxFailedErr):
		c.logger.Debug().Str("key", key).Msg("skipped cache fill after concurrent write")
	default:
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (c *CachedWorkspaceRepository) invalidate(ctx context.Context, keys ...string) {
	if c.redis == nil {
		return
	}
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, workspaceCacheGenKey)
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		c.logger.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}
