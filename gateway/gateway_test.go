package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserTokenRoundTrip(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")

	token, err := SignUserToken(7, "req-123")
	require.NoError(t, err)

	claims, err := VerifyUserToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims["tenant_id"])
	assert.Equal(t, "req-123", claims["request_id"])
}

func TestVerifyUserTokenRejectsWrongSecret(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	token, err := SignUserToken(7, "req-123")
	require.NoError(t, err)

	os.Setenv("JWT_SECRET", "another-secret")
	defer os.Unsetenv("JWT_SECRET")

	_, err = VerifyUserToken(token)
	assert.Error(t, err)
}

func TestVerifyUserTokenRejectsUnsignedAlg(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"tenant_id": 7})
	tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = VerifyUserToken(tokenString)
	assert.Error(t, err)
}

func TestPostJSONWrapsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	err := postJSON(server.URL, map[string]string{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderUnavailable)

	server.Close()
	err = postJSON(server.URL, map[string]string{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestPostJSONDecodesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body := map[string]interface{}{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ping", body["kind"])

		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	out := map[string]string{}
	require.NoError(t, postJSON(server.URL, map[string]string{"kind": "ping"}, &out))
	assert.Equal(t, "ok", out["status"])
}
