// Package authware protects fiber routes with the session token minted
// by the auth package. It declares its own narrow interfaces so it never
// imports the auth package; the auth package provides adapters instead.
package authware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

var (
	defaultTokenLookup = "cookie:authToken,header:" + fiber.HeaderAuthorization

	ErrTokenMissingOrMalformed = errors.New("missing or malformed token")
)

// AuthClaims is the validated claims payload handed to FindUser and the
// context enricher.
type AuthClaims struct {
	Subject  string
	UserID   string
	Expires  time.Time
	IssuedAt time.Time
}

// TokenValidator verifies a raw token. Mirrors the token service's
// Validate without importing it.
type TokenValidator interface {
	Validate(raw string) (AuthClaims, error)
}

// UserFinder resolves the claims' user. Returning an error rejects the
// request with the same 401 a bad token gets.
type UserFinder func(ctx context.Context, claims AuthClaims) (any, error)

type Config struct {
	// Filter skips the middleware when it returns true.
	Filter func(*fiber.Ctx) bool

	SuccessHandler fiber.Handler
	ErrorHandler   fiber.ErrorHandler

	// Validator is required.
	Validator TokenValidator

	// FindUser is optional. When set, its result is stored under
	// ContextKey and passed to ContextEnricher.
	FindUser UserFinder

	// TokenLookup is a comma-separated list of sources, tried in
	// order: "cookie:authToken,header:Authorization".
	TokenLookup string
	AuthScheme  string

	// ContextKey is the fiber Locals key for the resolved user (or the
	// claims, when FindUser is unset).
	ContextKey string

	// ContextEnricher propagates the resolved user into the request's
	// standard context.
	ContextEnricher func(ctx context.Context, user any) context.Context
}

// New returns the protection middleware. Every failure mode produces the
// same response, so probing the endpoint reveals nothing about whether a
// token was missing, expired, or forged.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	extractors := getExtractors(cfg.TokenLookup, cfg.AuthScheme)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := extractRawToken(c, extractors)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.Validator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		var user any = claims
		if cfg.FindUser != nil {
			user, err = cfg.FindUser(c.UserContext(), claims)
			if err != nil {
				return cfg.ErrorHandler(c, err)
			}
		}

		c.Locals(cfg.ContextKey, user)

		if cfg.ContextEnricher != nil {
			c.SetUserContext(cfg.ContextEnricher(c.UserContext(), user))
		}

		return cfg.SuccessHandler(c)
	}
}

func configDefault(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Validator == nil {
		panic("AUTH: middleware configuration: Validator is required.")
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, _ error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not authorized",
			})
		}
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

type tokenExtractor func(c *fiber.Ctx) (string, error)

func extractRawToken(c *fiber.Ctx, extractors []tokenExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(c)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

func getExtractors(tokenLookup string, authScheme string) []tokenExtractor {
	extractors := make([]tokenExtractor, 0)

	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) != 2 {
			continue
		}

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "cookie":
			extractors = append(extractors, tokenFromCookie(parts[1]))
		case "header":
			extractors = append(extractors, tokenFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, tokenFromQuery(parts[1]))
		}
	}

	return extractors
}

func tokenFromCookie(name string) tokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrTokenMissingOrMalformed
		}
		return token, nil
	}
}

func tokenFromHeader(header string, authScheme string) tokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		a := c.Get(header)
		l := len(authScheme)
		if l == 0 {
			return "", ErrTokenMissingOrMalformed
		}
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrTokenMissingOrMalformed
	}
}

func tokenFromQuery(param string) tokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Query(param)
		if token == "" {
			return "", ErrTokenMissingOrMalformed
		}
		return token, nil
	}
}
