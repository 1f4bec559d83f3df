// Package auth validates the bearer tokens that carry a pre-authenticated
// actor into the engine. Issuing tokens is an external identity provider's
// job; the one issuance helper here exists so deployments and tests can
// mint tokens without that provider.
package auth

import (
	"context"

	"github.com/pvasek/taskhub/internal/domain"
)

// TokenService defines operations for bearer-token handling.
type TokenService interface {
	// GenerateToken creates a signed token carrying the actor's identity
	// and capability. Returns the token string or an error if signing fails.
	GenerateToken(ctx context.Context, actor domain.Actor) (string, error)

	// ValidateToken validates the provided token string and reconstructs
	// the actor it was issued for. Returns ErrExpiredToken, ErrInvalidToken
	// or ErrTokenNotYetValid on validation failure.
	ValidateToken(ctx context.Context, tokenString string) (domain.Actor, error)
}
