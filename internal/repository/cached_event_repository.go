package repository

import (
	"context"
	"time"

	"github.com/prohmpiriya/event-marketplace/internal/domain"
	"github.com/prohmpiriya/event-marketplace/pkg/logger"
	pkgredis "github.com/prohmpiriya/event-marketplace/pkg/redis"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	eventCacheKeyPrefix = "event:detail:"
	DefaultEventTTL     = 5 * time.Minute
)

func eventCacheKey(id string) string {
	return eventCacheKeyPrefix + id
}

// CachedEventRepository serves GetByID from Redis and collapses concurrent
// misses per id. Locking reads, counts and lists go straight to the store.
type CachedEventRepository struct {
	EventRepository
	cache *pkgredis.Client
	ttl   time.Duration
	group singleflight.Group
	log   *logger.Logger
}

func NewCachedEventRepository(next EventRepository, cache *pkgredis.Client, ttl time.Duration) *CachedEventRepository {
	if ttl <= 0 {
		ttl = DefaultEventTTL
	}
	return &CachedEventRepository{
		EventRepository: next,
		cache:           cache,
		ttl:             ttl,
		log:             logger.Get().With(zap.String("component", "event_cache")),
	}
}

// GetByID reads through the cache. Inside a transaction the cache is skipped
// so the caller sees its own uncommitted writes.
func (r *CachedEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if txFromContext(ctx) != nil {
		return r.EventRepository.GetByID(ctx, id)
	}

	key := eventCacheKey(id)
	var cached domain.Event
	found, err := r.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		r.log.Warn("event cache read failed", zap.String("event_id", id), zap.Error(err))
	}
	if found {
		return &cached, nil
	}

	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		event, err := r.EventRepository.GetByID(ctx, id)
		if err != nil || event == nil {
			return event, err
		}
		if err := r.cache.SetJSON(ctx, key, event, r.ttl); err != nil {
			r.log.Warn("event cache write failed", zap.String("event_id", id), zap.Error(err))
		}
		return event, nil
	})
	if err != nil {
		return nil, err
	}

	event, _ := v.(*domain.Event)
	if event == nil {
		return nil, nil
	}
	// callers sharing a flight must not share a pointer
	clone := *event
	return &clone, nil
}

// Update writes through and drops the cached copy, again after commit so a
// reader cannot re-cache the pre-update row
func (r *CachedEventRepository) Update(ctx context.Context, event *domain.Event) error {
	if err := r.EventRepository.Update(ctx, event); err != nil {
		return err
	}
	r.Invalidate(ctx, event.ID)
	AfterCommit(ctx, func(ctx context.Context) { r.Invalidate(ctx, event.ID) })
	return nil
}

func (r *CachedEventRepository) Delete(ctx context.Context, id string) error {
	if err := r.EventRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.Invalidate(ctx, id)
	AfterCommit(ctx, func(ctx context.Context) { r.Invalidate(ctx, id) })
	return nil
}

// Invalidate drops the cached copy of the event
func (r *CachedEventRepository) Invalidate(ctx context.Context, id string) {
	if err := r.cache.Del(context.WithoutCancel(ctx), eventCacheKey(id)).Err(); err != nil {
		r.log.Warn("event cache invalidation failed", zap.String("event_id", id), zap.Error(err))
	}
}

var _ EventRepository = (*CachedEventRepository)(nil)
