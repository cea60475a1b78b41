package rules

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fleetdesk/internal/domain"
	id "fleetdesk/pkg/domain"
)

// Cache stores resolved rule sets in Redis so the hot quote path does not
// hit PostgreSQL for every evaluation. Misses and Redis failures fall back
// to the store; the cache is never authoritative.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(orgID id.OrgID, categoryID id.LicenseCategoryID) string {
	return fmt.Sprintf("rules:%s:%s", orgID, categoryID)
}

// Get returns the cached rule set, or (nil, false) on miss or error.
func (c *Cache) Get(ctx context.Context, orgID id.OrgID, categoryID id.LicenseCategoryID) (*domain.RuleSet, bool) {
	raw, err := c.client.Get(ctx, cacheKey(orgID, categoryID)).Bytes()
	if err != nil {
		return nil, false
	}
	var rs domain.RuleSet
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, false
	}
	return &rs, true
}

// Set caches a resolved rule set. Errors are swallowed: a cold cache only
// costs a database read.
func (c *Cache) Set(ctx context.Context, orgID id.OrgID, categoryID id.LicenseCategoryID, rs *domain.RuleSet) {
	raw, err := json.Marshal(rs)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, cacheKey(orgID, categoryID), raw, c.ttl).Err()
}

// Invalidate drops the cached entry after a rule create/update/delete.
func (c *Cache) Invalidate(ctx context.Context, orgID id.OrgID, categoryID id.LicenseCategoryID) {
	_ = c.client.Del(ctx, cacheKey(orgID, categoryID)).Err()
}
