package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// ErrProviderUnavailable covers every transport-level failure talking
// to an external provider: connection refused, timeout, non-2xx. The
// procedure layer maps it onto instance status ERROR.
var ErrProviderUnavailable = errors.New("provider unavailable")

var httpClient = &http.Client{Timeout: 30 * time.Second}

func postJSON(url string, request interface{}, response interface{}) error {
	payload, err := json.Marshal(request)
	if err != nil {
		return err
	}

	resp, err := httpClient.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	if response == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return nil
}

// SignUserToken issues the short-lived token the data-file service
// echoes back on the callback.
func SignUserToken(tenantID uint64, requestID string) (string, error) {
	claims := jwt.MapClaims{
		"tenant_id":  tenantID,
		"request_id": requestID,
		"exp":        time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

// VerifyUserToken checks a callback token and returns its claims.
func VerifyUserToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
