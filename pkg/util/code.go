package util

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/rand"
	"strconv"
)

const (
	codeMin = 100000
	codeMax = 999999
)

var ErrMissingHMACSecret = errors.New("code hashing secret is empty")

// GenerateCode returns a uniformly random six digit code in [100000, 999999].
func GenerateCode() string {
	return strconv.Itoa(codeMin + rand.Intn(codeMax-codeMin+1))
}

// CodeHasher hashes one-time codes with HMAC-SHA256 under a server secret.
// Only hashes are persisted; plaintext codes exist in memory and in the outgoing email.
type CodeHasher struct {
	secret []byte
}

func NewCodeHasher(secret string) (*CodeHasher, error) {
	if secret == "" {
		return nil, ErrMissingHMACSecret
	}
	return &CodeHasher{secret: []byte(secret)}, nil
}

// Hash returns the lowercase hex digest of code.
func (h *CodeHasher) Hash(code string) string {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(code))
	return hex.EncodeToString(mac.Sum(nil))
}

// Matches reports whether code hashes to storedHash, in constant time.
func (h *CodeHasher) Matches(code, storedHash string) bool {
	return hmac.Equal([]byte(h.Hash(code)), []byte(storedHash))
}
