package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	auth "github.com/skilllink/learnex-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSigningKey = []byte("test-signing-key-for-tokens")

func newTestTokenService(t *testing.T) auth.TokenService {
	t.Helper()

	svc, err := auth.NewTokenService(testSigningKey, 1, "learnex-test", nil)
	require.NoError(t, err)

	return svc
}

func TestNewTokenServiceRequiresKey(t *testing.T) {
	_, err := auth.NewTokenService(nil, 1, "learnex-test", nil)
	assert.ErrorIs(t, err, auth.ErrMissingSigningKey)

	_, err = auth.NewTokenService([]byte{}, 1, "learnex-test", nil)
	assert.ErrorIs(t, err, auth.ErrMissingSigningKey)
}

type stubConfig struct {
	signingKey string
	expiration int
	issuer     string
}

func (c stubConfig) GetSigningKey() string    { return c.signingKey }
func (c stubConfig) GetTokenExpiration() int  { return c.expiration }
func (c stubConfig) GetIssuer() string        { return c.issuer }
func (c stubConfig) GetPasswordHashCost() int { return 0 }
func (c stubConfig) GetCookieSecure() bool    { return false }

func TestNewTokenServiceFromConfig(t *testing.T) {
	svc, err := auth.NewTokenServiceFromConfig(stubConfig{
		signingKey: string(testSigningKey),
		expiration: 1,
		issuer:     "learnex-test",
	}, nil)
	require.NoError(t, err)

	raw, err := svc.Mint("user-123")
	require.NoError(t, err)

	claims, err := svc.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)

	_, err = auth.NewTokenServiceFromConfig(stubConfig{expiration: 1}, nil)
	assert.ErrorIs(t, err, auth.ErrMissingSigningKey)
}

func TestMintAndValidateRoundtrip(t *testing.T) {
	svc := newTestTokenService(t)

	raw, err := svc.Mint("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := svc.Validate(raw)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user-123", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.Expires, 5*time.Second)
}

func TestMintRequiresUserID(t *testing.T) {
	svc := newTestTokenService(t)

	_, err := svc.Mint("")
	assert.Error(t, err)
}

func TestValidateExpiredToken(t *testing.T) {
	svc := newTestTokenService(t)

	raw, err := svc.Mint("user-123",
		auth.MintIssuedAt(time.Now().Add(-2*time.Hour)),
		auth.MintTTL(time.Hour),
	)
	require.NoError(t, err)

	_, err = svc.Validate(raw)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
	assert.True(t, auth.IsTokenExpiredError(err))
}

func TestValidateTamperedToken(t *testing.T) {
	svc := newTestTokenService(t)

	raw, err := svc.Mint("user-123")
	require.NoError(t, err)

	// flip one character of the signature
	last := raw[len(raw)-1]
	tampered := raw[:len(raw)-1]
	if last == 'A' {
		tampered += "B"
	} else {
		tampered += "A"
	}

	_, err = svc.Validate(tampered)
	assert.ErrorIs(t, err, auth.ErrTokenMalformed)
}

func TestValidateWrongKey(t *testing.T) {
	svc := newTestTokenService(t)

	other, err := auth.NewTokenService([]byte("a-different-key-entirely"), 1, "learnex-test", nil)
	require.NoError(t, err)

	raw, err := other.Mint("user-123")
	require.NoError(t, err)

	_, err = svc.Validate(raw)
	assert.ErrorIs(t, err, auth.ErrTokenMalformed)
}

func TestValidateRejectsNonHMACAlgorithms(t *testing.T) {
	svc := newTestTokenService(t)

	// alg=none with an empty signature must never validate
	claims := &auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UID: "user-123",
	}
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Validate(raw)
	assert.ErrorIs(t, err, auth.ErrTokenMalformed)
}

func TestValidateGarbage(t *testing.T) {
	svc := newTestTokenService(t)

	for _, raw := range []string{"", "garbage", strings.Repeat("x.", 40)} {
		_, err := svc.Validate(raw)
		assert.ErrorIs(t, err, auth.ErrTokenMalformed)
	}
}
