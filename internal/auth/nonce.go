package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

const (
	nonceLength = 20

	DefaultNonceLifetime = 24 * time.Hour
	MinNonceLifetime     = time.Second
)

// NonceManager mints and verifies action-scoped anti-forgery tokens.
// A nonce stays valid for the tick it was minted in and the one after,
// where a tick is half the lifetime.
type NonceManager struct {
	secret   []byte
	lifetime time.Duration
	Now      func() time.Time
}

// NewNonceManager uses DefaultNonceLifetime for a non-positive lifetime and
// raises anything shorter to MinNonceLifetime.
func NewNonceManager(secret string, lifetime time.Duration) *NonceManager {
	switch {
	case lifetime <= 0:
		lifetime = DefaultNonceLifetime
	case lifetime < MinNonceLifetime:
		lifetime = MinNonceLifetime
	}
	return &NonceManager{secret: []byte(secret), lifetime: lifetime, Now: time.Now}
}

func (n *NonceManager) tick() int64 {
	half := int64(n.lifetime / 2)
	now := n.Now().UnixNano()
	return (now + half - 1) / half
}

func (n *NonceManager) sign(tick int64, action, userID string) string {
	mac := hmac.New(sha256.New, n.secret)
	mac.Write([]byte(strconv.FormatInt(tick, 10)))
	mac.Write([]byte{0})
	mac.Write([]byte(action))
	mac.Write([]byte{0})
	mac.Write([]byte(userID))
	return hex.EncodeToString(mac.Sum(nil))[:nonceLength]
}

// Create returns the nonce for action and userID in the current tick.
func (n *NonceManager) Create(action, userID string) string {
	return n.sign(n.tick(), action, userID)
}

// Verify accepts nonces from the current or previous tick.
func (n *NonceManager) Verify(nonce, action, userID string) bool {
	if len(nonce) != nonceLength {
		return false
	}
	t := n.tick()
	for _, candidate := range []int64{t, t - 1} {
		if hmac.Equal([]byte(nonce), []byte(n.sign(candidate, action, userID))) {
			return true
		}
	}
	return false
}
