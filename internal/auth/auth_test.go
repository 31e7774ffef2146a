package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/toohak/trivia-backend/config"
	"github.com/toohak/trivia-backend/internal/httperror"
)

func testService() *Service {
	return NewService(nil, config.Config{JWTSecret: "test-secret"})
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestVerifyTokenRoundTrip(t *testing.T) {
	service := testService()
	token := signToken(t, "test-secret", jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	userID, err := service.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", userID)
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	service := testService()
	token := signToken(t, "other-secret", jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	_, err := service.VerifyToken(token)
	require.Error(t, err)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	service := testService()
	token := signToken(t, "test-secret", jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})

	_, err := service.VerifyToken(token)
	require.Error(t, err)
}

func TestVerifyTokenRejectsMissingUserID(t *testing.T) {
	service := testService()
	token := signToken(t, "test-secret", jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := service.VerifyToken(token)
	require.Error(t, err)
}

func TestBearerUserID(t *testing.T) {
	service := testService()
	valid := signToken(t, "test-secret", jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name    string
		header  string
		userID  string
		message string
	}{
		{name: "valid bearer token", header: "Bearer " + valid, userID: "user-1"},
		{name: "missing header", header: "", message: "No authorization header"},
		{name: "wrong scheme", header: "Basic abc", message: "Invalid authorization type"},
		{name: "no value", header: "Bearer ", message: "No authorization value"},
		{name: "garbage token", header: "Bearer not-a-jwt", message: "Invalid authorization token"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}

			userID, err := service.BearerUserID(r)
			if tc.message == "" {
				require.NoError(t, err)
				require.Equal(t, tc.userID, userID)
				return
			}

			var httpErr *httperror.Error
			require.ErrorAs(t, err, &httpErr)
			require.Equal(t, http.StatusUnauthorized, httpErr.Status)
			require.Equal(t, tc.message, httpErr.Message)
		})
	}
}
