package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pvasek/taskhub/internal/config"
	"github.com/pvasek/taskhub/internal/domain"
	"github.com/pvasek/taskhub/internal/platform/logger"
)

// hmacTokenService is an implementation of TokenService using HMAC-SHA signing.
type hmacTokenService struct {
	signingKey    []byte
	tokenLifetime time.Duration
	timeFunc      func() time.Time // Injectable for testing
	clockSkew     time.Duration    // Allowed drift between issuer and validator clocks
}

// actorClaims defines the structure of the JWT claims we use.
type actorClaims struct {
	DisplayName string `json:"name"`
	Email       string `json:"email"`
	IsAdmin     bool   `json:"admin"`
	jwt.RegisteredClaims
}

// Ensure hmacTokenService implements TokenService interface
var _ TokenService = (*hmacTokenService)(nil)

// NewTokenService creates a new TokenService using HMAC-SHA signing.
func NewTokenService(cfg config.AuthConfig) (TokenService, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}

	return &hmacTokenService{
		signingKey:    []byte(cfg.JWTSecret),
		tokenLifetime: time.Hour,
		timeFunc:      time.Now,
		clockSkew:     2 * time.Minute,
	}, nil
}

// GenerateToken creates a signed JWT carrying the actor's identity.
func (s *hmacTokenService) GenerateToken(ctx context.Context, actor domain.Actor) (string, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	claims := actorClaims{
		DisplayName: actor.DisplayName,
		Email:       actor.Email,
		IsAdmin:     actor.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenLifetime)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.signingKey)
	if err != nil {
		log.Error("failed to sign token",
			"error", err,
			"actor_id", actor.ID)
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// ValidateToken validates a JWT and reconstructs the actor it carries.
func (s *hmacTokenService) ValidateToken(
	ctx context.Context,
	tokenString string,
) (domain.Actor, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&actorClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		parserOpts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("token validation failed: token expired", "error", err)
			return domain.Actor{}, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Debug("token validation failed: token not yet valid", "error", err)
			return domain.Actor{}, ErrTokenNotYetValid
		default:
			log.Debug("token validation failed", "error", err)
			return domain.Actor{}, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*actorClaims)
	if !ok || !token.Valid {
		return domain.Actor{}, ErrInvalidToken
	}

	actorID, err := uuid.Parse(claims.Subject)
	if err != nil {
		log.Debug("token subject is not a valid actor ID", "error", err)
		return domain.Actor{}, ErrInvalidToken
	}

	return domain.Actor{
		ID:          actorID,
		DisplayName: claims.DisplayName,
		Email:       claims.Email,
		IsAdmin:     claims.IsAdmin,
	}, nil
}
