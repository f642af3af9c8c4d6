package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTokenVerifier implements domain.TokenVerifier for tests.
type fakeTokenVerifier struct {
	userID string
	err    error
}

func (f *fakeTokenVerifier) Verify(_ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.userID, nil
}

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	tests := []struct {
		name          string
		authHeader    string
		verifier      domain.TokenVerifier
		wantStatus    int
		wantBodyCode  string
		nextCalled    bool
		wantContextID string
	}{
		{
			name:          "valid token sets context and calls next",
			authHeader:    "Bearer valid-token",
			verifier:      &fakeTokenVerifier{userID: "user-123"},
			wantStatus:    http.StatusOK,
			nextCalled:    true,
			wantContextID: "user-123",
		},
		{
			name:         "missing authorization header",
			authHeader:   "",
			verifier:     &fakeTokenVerifier{userID: "user-123"},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
			nextCalled:   false,
		},
		{
			name:         "invalid authorization format no Bearer prefix",
			authHeader:   "Basic abc",
			verifier:     &fakeTokenVerifier{userID: "user-123"},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
			nextCalled:   false,
		},
		{
			name:          "lowercase bearer scheme",
			authHeader:    "bearer valid-token",
			verifier:      &fakeTokenVerifier{userID: "user-123"},
			wantStatus:    http.StatusOK,
			nextCalled:    true,
			wantContextID: "user-123",
		},
		{
			name:         "empty token after Bearer",
			authHeader:   "Bearer ",
			verifier:     &fakeTokenVerifier{userID: "user-123"},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
			nextCalled:   false,
		},
		{
			name:         "verifier returns error",
			authHeader:   "Bearer bad-token",
			verifier:     &fakeTokenVerifier{err: errors.New("invalid or expired token")},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
			nextCalled:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			var capturedUserID string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				id, ok := UserIDFromContext(r.Context())
				if ok {
					capturedUserID = id
				}
				w.WriteHeader(http.StatusOK)
			})
			wrap := RequireAuth(tt.verifier, logger)
			handler := wrap(next)

			req := httptest.NewRequest(http.MethodGet, "http://test/api/events/ev-1/save", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			handler(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			assert.Equal(t, tt.nextCalled, nextCalled, "next handler called")
			if tt.nextCalled && tt.wantContextID != "" {
				assert.Equal(t, tt.wantContextID, capturedUserID, "user ID in context")
			}
			if tt.wantStatus != http.StatusOK && tt.wantBodyCode != "" {
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		verifier   domain.TokenVerifier
		wantUserID string
	}{
		{name: "valid token", authHeader: "Bearer good", verifier: &fakeTokenVerifier{userID: "user-1"}, wantUserID: "user-1"},
		{name: "no header", verifier: &fakeTokenVerifier{userID: "user-1"}},
		{name: "invalid token is anonymous", authHeader: "Bearer bad", verifier: &fakeTokenVerifier{err: errors.New("expired")}},
		{name: "wrong scheme", authHeader: "Token abc", verifier: &fakeTokenVerifier{userID: "user-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			var gotID string
			next := func(w http.ResponseWriter, r *http.Request) {
				called = true
				gotID, _ = UserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}
			req := httptest.NewRequest(http.MethodGet, "http://test/api/events", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()
			OptionalAuth(tt.verifier)(next)(rr, req)

			require.True(t, called)
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.wantUserID, gotID)
		})
	}
}
