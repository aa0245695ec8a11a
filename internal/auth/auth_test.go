package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{Secret: "test-secret", Issuer: "campus-idp"}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testConfig.Secret))
	require.NoError(t, err)
	return signed
}

func TestParseValidToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":         "resident-1",
		"iss":         testConfig.Issuer,
		"building_id": "b1",
		"scopes":      []string{ScopeRotaRead, ScopeRotaWrite},
		"exp":         time.Now().Add(time.Hour).Unix(),
	})

	claims, err := Parse(token, testConfig)
	require.NoError(t, err)
	require.Equal(t, "resident-1", claims.Subject)
	require.Equal(t, "b1", claims.BuildingID)
	require.True(t, claims.HasScope(ScopeRotaRead))
	require.True(t, claims.HasScope(ScopeRotaWrite))
	require.False(t, claims.HasScope(ScopeRotaAdmin))
}

func TestParseSpaceSeparatedScopes(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":    "chief-1",
		"iss":    testConfig.Issuer,
		"scopes": "rota:read rota:admin",
		"exp":    time.Now().Add(time.Hour).Unix(),
	})

	claims, err := Parse(token, testConfig)
	require.NoError(t, err)
	require.True(t, claims.HasScope(ScopeRotaAdmin))
	require.True(t, claims.HasScope(ScopeRotaRead))
}

func TestParseRejectsBadTokens(t *testing.T) {
	_, err := Parse("", testConfig)
	require.ErrorIs(t, err, ErrMissingToken)

	_, err = Parse("not-a-token", testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)

	expired := signToken(t, jwt.MapClaims{
		"sub": "resident-1",
		"iss": testConfig.Issuer,
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	_, err = Parse(expired, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer := signToken(t, jwt.MapClaims{
		"sub": "resident-1",
		"iss": "someone-else",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	_, err = Parse(wrongIssuer, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)

	missingSubject := signToken(t, jwt.MapClaims{
		"iss": testConfig.Issuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	_, err = Parse(missingSubject, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestHasScopeNilClaims(t *testing.T) {
	var claims *Claims
	require.False(t, claims.HasScope(ScopeRotaRead))
}
