package auth

import (
	"context"
	"time"

	"github.com/color-craze/client/src/identity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// Resolver resolves the bearer credential from locally persisted state.
// It reads the store on every call so that a credential rewritten by the
// login flow is used on the next connect.
type Resolver struct {
	store  identity.Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewResolver creates a Resolver reading from store.
func NewResolver(store identity.Store, logger zerolog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger.With().Str("component", "token-resolver").Logger(),
		now:    time.Now,
	}
}

// Token returns the first non-empty credential, or "" when none is stored.
func (r *Resolver) Token(ctx context.Context) string {
	id, err := identity.Load(ctx, r.store)
	if err != nil {
		r.logger.Warn().Err(err).Msg("credential lookup failed")
		return ""
	}
	if id.Token == "" {
		return ""
	}
	if claims, ok := Inspect(id.Token); ok && claims.ExpiresAt != nil && claims.ExpiresAt.Before(r.now()) {
		r.logger.Warn().
			Time("expired_at", claims.ExpiresAt.Time).
			Str("subject", claims.Subject).
			Msg("stored credential has expired")
	}
	return id.Token
}

// Headers returns the Authorization header for the current credential, or an
// empty map for anonymous connections.
func (r *Resolver) Headers(ctx context.Context) map[string]string {
	tok := r.Token(ctx)
	if tok == "" {
		return map[string]string{}
	}
	return map[string]string{"Authorization": "Bearer " + tok}
}

// Inspect decodes a JWT without verifying its signature. The server is the
// only party that verifies; the client reads claims for diagnostics.
func Inspect(token string) (*jwt.RegisteredClaims, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}
