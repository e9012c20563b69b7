package calendar

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

// The Google redirect lands as a bare browser GET with no Authorization
// header, so the OAuth state value has to carry the user identity itself:
// "uid.expiry.hmac", signed with a per-process key. A restart mid-flow
// invalidates outstanding states; the user just reconnects.

const stateTTL = 10 * time.Minute

func newStateKey() []byte {
	k := make([]byte, 32)
	_, _ = rand.Read(k)
	return k
}

func (s *Service) mintState(uid int64) string {
	exp := time.Now().Add(stateTTL).Unix()
	msg := strconv.FormatInt(uid, 10) + "." + strconv.FormatInt(exp, 10)
	mac := hmac.New(sha256.New, s.stateKey)
	mac.Write([]byte(msg))
	return msg + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (s *Service) verifyState(state string) (int64, bool) {
	parts := strings.Split(state, ".")
	if len(parts) != 3 {
		return 0, false
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return 0, false
	}
	mac := hmac.New(sha256.New, s.stateKey)
	mac.Write([]byte(parts[0] + "." + parts[1]))
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return 0, false
	}
	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || time.Now().Unix() > exp {
		return 0, false
	}
	uid, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || uid <= 0 {
		return 0, false
	}
	return uid, true
}
