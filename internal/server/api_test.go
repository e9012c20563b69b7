package server

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/encorelando/encorelando/internal/config"
)

// The Google OAuth redirect is a plain browser GET with no Authorization
// header; the callback route must be reachable without a JWT and reject the
// request on its state check, not on auth.
func TestGoogleCallbackReachableWithoutJWT(t *testing.T) {
	h := newAPI(config.Config{PublicBaseURL: "https://encorelando.com"}, nil)

	req := httptest.NewRequest("GET", "/calendar/google/callback?code=abc&state=bogus", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "state")
}

// Connect stays behind the JWT middleware: it is triggered by our own
// client, which has a token.
func TestGoogleConnectRequiresJWT(t *testing.T) {
	h := newAPI(config.Config{PublicBaseURL: "https://encorelando.com"}, nil)

	req := httptest.NewRequest("GET", "/calendar/google/connect", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, 401, w.Code)
}
