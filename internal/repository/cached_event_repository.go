package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prohmpiriya/event-registration/internal/domain"
)

const (
	// Cache key prefixes
	eventDetailKeyPrefix = "event:detail:"
	eventListKeyPrefix   = "event:list:"
)

// stringCache is the cache surface the decorator needs; pkg/redis.Client
// satisfies it
type stringCache interface {
	GetString(ctx context.Context, key string) (string, error)
	SetString(ctx context.Context, key, value string, ttl time.Duration) error
}

// CachedEventRepository decorates event reads with Redis cache-aside.
// It serves display-only traffic and never invalidates: writes go through
// the uncached repository and stale entries simply age out, so browsers
// may see an update up to the TTL late. The registration workflow reads
// the uncached repository directly.
type CachedEventRepository struct {
	reader EventReader
	cache  stringCache
	ttl    time.Duration
}

var _ EventReader = (*CachedEventRepository)(nil)

// NewCachedEventRepository creates a read-through cache over reader
func NewCachedEventRepository(reader EventReader, cache stringCache, ttl time.Duration) *CachedEventRepository {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedEventRepository{
		reader: reader,
		cache:  cache,
		ttl:    ttl,
	}
}

// GetByID retrieves an event by ID, serving from cache when possible
func (r *CachedEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	cacheKey := eventDetailKeyPrefix + id
	if cached, err := r.cache.GetString(ctx, cacheKey); err == nil && cached != "" {
		var event domain.Event
		if err := json.Unmarshal([]byte(cached), &event); err == nil {
			return &event, nil
		}
	}

	event, err := r.reader.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, nil
	}

	if data, err := json.Marshal(event); err == nil {
		_ = r.cache.SetString(ctx, cacheKey, string(data), r.ttl)
	}

	return event, nil
}

type cachedEventList struct {
	Events []*domain.Event `json:"events"`
	Total  int             `json:"total"`
}

// List lists events with filters and pagination. Only unfiltered and
// status-only listings are cached; filtered queries bypass the cache.
func (r *CachedEventRepository) List(ctx context.Context, filter *EventFilter, limit, offset int) ([]*domain.Event, int, error) {
	if filter != nil && (filter.OrganizerID != "" || filter.Search != "") {
		return r.reader.List(ctx, filter, limit, offset)
	}

	status := ""
	if filter != nil {
		status = filter.Status
	}
	cacheKey := fmt.Sprintf("%s%s:%d:%d", eventListKeyPrefix, status, limit, offset)
	if cached, err := r.cache.GetString(ctx, cacheKey); err == nil && cached != "" {
		var result cachedEventList
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			return result.Events, result.Total, nil
		}
	}

	events, total, err := r.reader.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	if data, err := json.Marshal(cachedEventList{Events: events, Total: total}); err == nil {
		_ = r.cache.SetString(ctx, cacheKey, string(data), r.ttl)
	}

	return events, total, nil
}
