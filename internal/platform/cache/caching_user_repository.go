// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"account_backend/internal/feature/account/domain/entity"
	"account_backend/internal/feature/account/usecase"
)

// tombstone marks a key invalidated by Update or Delete.
// While it lives, lookups read through to the store and never repopulate the key.
const tombstone = "-"

// tombstoneTTL bounds how long an in-flight miss may take to write back.
const tombstoneTTL = time.Minute

// CachingUserRepository decorates a UserRepository so that Update and Delete invalidate
// the identity cache. Reads made by the usecase go straight to the store.
// Token subjects are resolved through Identities.
type CachingUserRepository struct {
	usecase.UserRepository

	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.UserRepository = (*CachingUserRepository)(nil)

// NewCachingUserRepository decorates a UserRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "users".
func NewCachingUserRepository(rdb *redis.Client, ttl time.Duration, inner usecase.UserRepository, namespace string) *CachingUserRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "users"
	}
	return &CachingUserRepository{
		UserRepository: inner,
		rdb:            rdb,
		ttl:            ttl,
		namespace:      namespace,
	}
}

// cachedIdentity is the JSON shape stored in Redis.
// The password hash is never written to the cache.
type cachedIdentity struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	CreatedAt        time.Time  `json:"createdAt"`
	LastUpdationTime *time.Time `json:"lastUpdationTime,omitempty"`
}

func newCachedIdentity(u *entity.User) cachedIdentity {
	return cachedIdentity{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		CreatedAt:        u.CreatedAt,
		LastUpdationTime: u.LastUpdationTime,
	}
}

func (ci cachedIdentity) toEntity() *entity.User {
	return &entity.User{
		ID:               ci.ID,
		Name:             ci.Name,
		Email:            ci.Email,
		CreatedAt:        ci.CreatedAt,
		LastUpdationTime: ci.LastUpdationTime,
	}
}

// Identities returns the cached lookup used by the request authenticator.
func (c *CachingUserRepository) Identities() *IdentityFinder {
	return &IdentityFinder{repo: c}
}

// IdentityFinder resolves token subjects through the cache.
// Users it returns carry no password hash.
type IdentityFinder struct {
	repo *CachingUserRepository
}

// FindByID checks the cache first, then falls back to the store.
func (f *IdentityFinder) FindByID(ctx context.Context, id string) (*entity.User, error) {
	c := f.repo

	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.readThrough(ctx, id)
	}

	key := c.cacheKey(id)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		if string(b) == tombstone {
			return c.readThrough(ctx, id)
		}
		var ci cachedIdentity
		if err := json.Unmarshal(b, &ci); err == nil {
			return ci.toEntity(), nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the store
	u, err := c.UserRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ci := newCachedIdentity(u)

	// 3) Store in cache (best effort)
	// SETNX fails when Update or Delete left a tombstone while the store was read.
	if b, err := json.Marshal(ci); err == nil {
		_ = c.rdb.SetNX(ctx, key, b, c.ttl).Err()
	}

	return ci.toEntity(), nil
}

func (c *CachingUserRepository) readThrough(ctx context.Context, id string) (*entity.User, error) {
	u, err := c.UserRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return newCachedIdentity(u).toEntity(), nil
}

// Update persists the user and invalidates its cache entry.
func (c *CachingUserRepository) Update(ctx context.Context, u *entity.User) error {
	if err := c.UserRepository.Update(ctx, u); err != nil {
		return err
	}
	c.invalidate(ctx, u.ID)
	return nil
}

// Delete removes the user and invalidates its cache entry.
func (c *CachingUserRepository) Delete(ctx context.Context, id string) error {
	if err := c.UserRepository.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// invalidate overwrites the entry with a tombstone so a concurrent miss cannot write back stale data.
func (c *CachingUserRepository) invalidate(ctx context.Context, id string) {
	if c.rdb == nil {
		return
	}
	_ = c.rdb.Set(ctx, c.cacheKey(id), tombstone, tombstoneTTL).Err() // Best effort: the TTL bounds staleness
}

// cacheKey generates the cache key for a user id.
func (c *CachingUserRepository) cacheKey(id string) string {
	return fmt.Sprintf("%s:id:%s", c.namespace, safe(id))
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
