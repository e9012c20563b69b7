package calendar

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encorelando/encorelando/internal/config"
)

func testService() *Service {
	return NewService(config.Config{PublicBaseURL: "https://encorelando.com"}, nil)
}

func TestStateRoundTrip(t *testing.T) {
	s := testService()
	uid, ok := s.verifyState(s.mintState(42))
	require.True(t, ok)
	assert.Equal(t, int64(42), uid)
}

func TestStateRejectsTampering(t *testing.T) {
	s := testService()
	state := s.mintState(42)

	_, ok := s.verifyState("7" + state[1:])
	assert.False(t, ok, "altered uid must not verify")

	_, ok = s.verifyState(state + "x")
	assert.False(t, ok)

	_, ok = s.verifyState("not-a-state")
	assert.False(t, ok, "opaque static strings carry no identity")

	_, ok = s.verifyState("")
	assert.False(t, ok)

	// a state minted by another process (different key) must not verify
	_, ok = testService().verifyState(state)
	assert.False(t, ok)
}

func TestStateRejectsExpired(t *testing.T) {
	s := testService()
	exp := time.Now().Add(-time.Minute).Unix()
	msg := "42." + strconv.FormatInt(exp, 10)
	mac := hmac.New(sha256.New, s.stateKey)
	mac.Write([]byte(msg))
	stale := msg + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	_, ok := s.verifyState(stale)
	assert.False(t, ok)
}
