package auth

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenCache keeps parsed claims in Redis so hot tokens skip signature
// verification. A nil client disables the cache.
type TokenCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenCache builds a cache. ttl <= 0 defaults to ten minutes.
func NewTokenCache(client *redis.Client, ttl time.Duration) *TokenCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &TokenCache{client: client, ttl: ttl}
}

func cacheKey(token string) string {
	sum := sha1.Sum([]byte(token))
	return "auth:jwt:" + hex.EncodeToString(sum[:])
}

// Get returns cached claims for the token, if present.
func (c *TokenCache) Get(ctx context.Context, token string) (*Claims, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, cacheKey(token)).Result()
	if err != nil {
		return nil, false
	}
	var claims Claims
	if err := json.Unmarshal([]byte(raw), &claims); err != nil {
		_ = c.client.Del(ctx, cacheKey(token)).Err()
		return nil, false
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, false
	}
	return &claims, true
}

// Set caches parsed claims, capping the entry at the token's own expiry.
func (c *TokenCache) Set(ctx context.Context, token string, claims *Claims) {
	if c == nil || c.client == nil || claims == nil {
		return
	}
	ttl := c.ttl
	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining < ttl {
			ttl = remaining
		}
	}
	if ttl <= 0 {
		return
	}
	body, err := json.Marshal(claims)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, cacheKey(token), body, ttl).Err()
}

var ErrInvalidToken = errors.New("invalid token")

// Validator resolves bearer tokens to user ids.
type Validator struct {
	secret string
	cache  *TokenCache
}

// NewValidator builds a Validator. cache may be nil.
func NewValidator(secret string, cache *TokenCache) *Validator {
	return &Validator{secret: secret, cache: cache}
}

// Validate parses the token (consulting the cache first) and returns the
// authenticated user id.
func (v *Validator) Validate(ctx context.Context, token string) (int, error) {
	if token == "" {
		return 0, ErrInvalidToken
	}
	if claims, ok := v.cache.Get(ctx, token); ok {
		return claims.UserID, nil
	}
	claims, err := ParseToken(v.secret, token)
	if err != nil {
		return 0, err
	}
	if claims.UserID == 0 {
		return 0, ErrInvalidToken
	}
	v.cache.Set(ctx, token, claims)
	return claims.UserID, nil
}
