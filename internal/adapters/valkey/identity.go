package valkey

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownToken is returned when a bearer token has no session entry.
var ErrUnknownToken = errors.New("unknown or expired token")

// TokenResolver implements ports.IdentityResolver against the session
// entries the auth service writes under geo:token:<token>.
type TokenResolver struct {
	cache *Cache
}

func NewTokenResolver(cache *Cache) *TokenResolver {
	return &TokenResolver{cache: cache}
}

// Resolve maps a bearer token to the owner identity it was issued for.
func (r *TokenResolver) Resolve(ctx context.Context, token string) (string, error) {
	data, err := r.cache.Get(ctx, "geo:token:"+token)
	if err != nil {
		return "", ErrUnknownToken
	}
	ownerID := string(data)
	if ownerID == "" {
		return "", fmt.Errorf("empty session for token")
	}
	return ownerID, nil
}
