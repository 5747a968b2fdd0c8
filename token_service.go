package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// DefaultTokenExpiration is the session lifetime in hours (30 days).
const DefaultTokenExpiration = 720

// TokenService mints and validates signed session tokens.
type TokenService interface {
	// Mint issues a fresh token for the given user ID.
	Mint(userID string, opts ...MintOption) (string, error)
	// Validate parses and verifies a raw token and returns its claims.
	// Expired tokens fail with ErrTokenExpired, anything else that does
	// not verify fails with ErrTokenMalformed.
	Validate(raw string) (AuthClaims, error)
	// SignClaims signs an arbitrary claims payload with the service key.
	SignClaims(claims jwt.Claims) (string, error)
}

type tokenService struct {
	signingKey      []byte
	tokenExpiration int
	issuer          string
	logger          Logger
}

// NewTokenService builds an HMAC-SHA256 token service. The signing key is
// mandatory: a service with an empty key would mint tokens anyone can
// forge, so we refuse to construct one.
func NewTokenService(signingKey []byte, tokenExpiration int, issuer string, logger Logger) (TokenService, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}

	if tokenExpiration <= 0 {
		tokenExpiration = DefaultTokenExpiration
	}

	if logger == nil {
		logger = &defLogger{}
	}

	return &tokenService{
		signingKey:      signingKey,
		tokenExpiration: tokenExpiration,
		issuer:          issuer,
		logger:          logger,
	}, nil
}

// NewTokenServiceFromConfig builds a token service from a Config, so main
// can hand over its env-backed config without unpacking each getter.
func NewTokenServiceFromConfig(cfg Config, logger Logger) (TokenService, error) {
	return NewTokenService([]byte(cfg.GetSigningKey()), cfg.GetTokenExpiration(), cfg.GetIssuer(), logger)
}

func (s *tokenService) Mint(userID string, opts ...MintOption) (string, error) {
	if userID == "" {
		return "", goerrors.New("cannot mint token without user id", goerrors.CategoryBadInput)
	}

	o := mintOptions{
		issuedAt: time.Now(),
		ttl:      time.Duration(s.tokenExpiration) * time.Hour,
	}
	for _, opt := range opts {
		opt(&o)
	}

	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(o.issuedAt),
			ExpiresAt: jwt.NewNumericDate(o.issuedAt.Add(o.ttl)),
		},
		UID: userID,
	}

	return s.SignClaims(claims)
}

func (s *tokenService) SignClaims(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign token")
	}
	return raw, nil
}

func (s *tokenService) Validate(raw string) (AuthClaims, error) {
	if raw == "" {
		return AuthClaims{}, ErrTokenMalformed
	}

	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})

	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return AuthClaims{}, ErrTokenExpired
		}
		s.logger.Debug("token validation failed: %v", err)
		return AuthClaims{}, ErrTokenMalformed
	}

	if !token.Valid {
		return AuthClaims{}, ErrTokenMalformed
	}

	return claimsFromToken(claims), nil
}
