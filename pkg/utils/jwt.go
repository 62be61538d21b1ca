package utils

import (
	"errors"
	"fmt"
	"time"

	appErrors "bloodlink/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload of an access token.
type Claims struct {
	AccountID uuid.UUID `json:"account_id"`
	Role      string    `json:"role"`
	jwt.RegisteredClaims
}

type IssuedToken struct {
	Token     string    `json:"token"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenManager signs and verifies HS256 access tokens with an injected secret.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for issuing and validating tokens.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	m.now = now
	return m
}

func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

func (m *TokenManager) Issue(accountID uuid.UUID, role string) (*IssuedToken, error) {
	issuedAt := m.now()
	expiresAt := issuedAt.Add(m.ttl)
	tokenID := uuid.NewString()

	claims := Claims{
		AccountID: accountID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   accountID.String(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &IssuedToken{
		Token:     signed,
		TokenID:   tokenID,
		ExpiresAt: expiresAt,
	}, nil
}

func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token has expired", appErrors.ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: %v", appErrors.ErrInvalidToken, err)
	}
	if !token.Valid || claims.AccountID == uuid.Nil {
		return nil, appErrors.ErrInvalidToken
	}

	return claims, nil
}
