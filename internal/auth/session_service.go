package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL defines the fallback validity period for session credentials.
const DefaultSessionTTL = 30 * 24 * time.Hour

// Config bundles the configuration required to build a SessionService.
type Config struct {
	Secret     string
	Issuer     string
	SessionTTL time.Duration
	Clock      func() time.Time
}

// Identity is a verified user identity, produced by magic-link redemption
// and re-derived from a valid session credential.
type Identity struct {
	UserID string
	Email  string
}

// Claims represents the custom claims embedded in issued session tokens.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// SessionService issues and validates stateless, signed session credentials.
// Validity is fully determined by the HMAC signature and the expiry claim;
// no server-side session record exists. A revocation list can be layered in
// front of Validate later without changing this contract.
type SessionService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionService constructs a SessionService from the supplied configuration.
func NewSessionService(cfg Config) (*SessionService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("session: signing secret must be provided")
	}

	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &SessionService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    now,
	}, nil
}

// TTL reports the configured credential lifetime.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a session credential binding the identity to an absolute expiry.
func (s *SessionService) Issue(identity Identity) (string, error) {
	if identity.UserID == "" {
		return "", errors.New("session: user id is required")
	}
	if identity.Email == "" {
		return "", errors.New("session: email is required")
	}

	now := s.now()
	claims := &Claims{
		UserID: identity.UserID,
		Email:  identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("session: sign token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a session credential, returning the embedded
// identity. Malformed encoding, signature mismatch and expiry all fail the
// same way; callers translate any error to a uniform "unauthenticated".
func (s *SessionService) Validate(tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, errors.New("session: token string is empty")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("session: parse token: %w", err)
	}

	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, errors.New("session: invalid issuer")
	}
	if claims.UserID == "" || claims.Email == "" {
		return nil, errors.New("session: missing identity claims")
	}

	return &Identity{UserID: claims.UserID, Email: claims.Email}, nil
}
