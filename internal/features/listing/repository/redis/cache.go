package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"coachmarket-backend/internal/features/listing/models"
	rplatform "coachmarket-backend/internal/platform/redis"
)

// ListingCache caches pages of the public service listing. The whole
// namespace is flushed whenever a listing is published or toggled.
type ListingCache struct {
	client *rplatform.Client
	ttl    time.Duration
}

func NewListingCache(client *rplatform.Client, ttl time.Duration) *ListingCache {
	return &ListingCache{client: client, ttl: ttl}
}

func (c *ListingCache) key(filter models.ServiceFilter) string {
	return fmt.Sprintf("services:g%d:l%d:o%d", filter.GameID, filter.Limit, filter.Offset)
}

func (c *ListingCache) Get(ctx context.Context, filter models.ServiceFilter) ([]*models.PublishedService, error) {
	v, err := c.client.Get(ctx, c.key(filter)).Bytes()
	if err != nil {
		return nil, err
	}
	var services []*models.PublishedService
	if err := json.Unmarshal(v, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (c *ListingCache) Set(ctx context.Context, filter models.ServiceFilter, services []*models.PublishedService) error {
	b, err := json.Marshal(services)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(filter), b, c.ttl).Err()
}

// InvalidateAll drops every cached listing page.
func (c *ListingCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "services:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
