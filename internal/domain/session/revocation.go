// Package session defines how issued access tokens are invalidated before
// their natural expiry.
package session

import (
	"context"
	"time"
)

//go:generate mockgen -source=revocation.go -destination=mocks/revocation_mock.go -package=mocks

// RevocationList records token IDs that must no longer be accepted.
type RevocationList interface {
	// Revoke blocks tokenID for ttl; entries vanish once the token would
	// have expired anyway.
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
