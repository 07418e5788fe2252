// Package jwtauth issues and validates the bearer tokens that carry a
// caller's ledger address to the HTTP layer.
package jwtauth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "caplock/pkg/domain-errors"
	"caplock/pkg/domain"
)

// Claims are the token claims for caplock access tokens.
type Claims struct {
	Address string `json:"address"`
	jwt.RegisteredClaims
}

// Service handles token creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewService(signingKey, issuer, audience string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// GenerateAccessToken mints a token for addr. Operator tooling uses this to
// hand admins a credential for their registered address.
func (s *Service) GenerateAccessToken(addr domain.Address, expiresIn time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Address: addr.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// ValidateToken verifies the signature and expiry and returns the caller
// address the token asserts.
func (s *Service) ValidateToken(tokenString string) (domain.Address, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.ZeroAddress, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return domain.ZeroAddress, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return domain.ZeroAddress, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	addr, err := domain.ParseAddress(claims.Address)
	if err != nil || addr.IsZero() {
		return domain.ZeroAddress, dErrors.New(dErrors.CodeUnauthorized, "token carries no valid address")
	}
	return addr, nil
}
