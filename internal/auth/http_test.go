// ABOUTME: Tests for HTTP bearer authentication middleware
// ABOUTME: Covers required and optional auth and the WWW-Authenticate challenge

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		token   string
		wantErr bool
	}{
		{"Bearer abc", "abc", false},
		{"", "", true},
		{"Basic abc", "", true},
		{"Bearer ", "", true},
	}
	for _, tt := range tests {
		token, msg := extractBearerToken(tt.header)
		assert.Equal(t, tt.token, token, tt.header)
		assert.Equal(t, tt.wantErr, msg != "", tt.header)
	}
}

func TestBearerMiddleware(t *testing.T) {
	v := newTestVerifier(t)
	valid, err := v.Generate("claude-desktop", time.Hour)
	require.NoError(t, err)

	var seen *Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name     string
		required bool
		header   string
		status   int
		subject  string
	}{
		{"required valid", true, "Bearer " + valid, http.StatusNoContent, "claude-desktop"},
		{"required missing", true, "", http.StatusUnauthorized, ""},
		{"required bad", true, "Bearer nope", http.StatusUnauthorized, ""},
		{"optional anonymous", false, "", http.StatusNoContent, ""},
		{"optional valid", false, "Bearer " + valid, http.StatusNoContent, "claude-desktop"},
		{"optional bad", false, "Bearer nope", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			h := BearerMiddleware(v, tt.required)(next)

			req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusUnauthorized {
				assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
				return
			}
			if tt.subject == "" {
				assert.Nil(t, seen)
			} else {
				require.NotNil(t, seen)
				assert.Equal(t, tt.subject, seen.Subject)
			}
		})
	}
}
