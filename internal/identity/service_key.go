package identity

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// HashKey returns a stable SHA-256 hex digest for the provided key.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(key)))
	return hex.EncodeToString(sum[:])
}

// ServiceKey recognises the provider admin key. The zero value matches nothing.
type ServiceKey struct {
	hash string
}

func NewServiceKey(key string) ServiceKey {
	if strings.TrimSpace(key) == "" {
		return ServiceKey{}
	}
	return ServiceKey{hash: HashKey(key)}
}

func (k ServiceKey) Enabled() bool { return k.hash != "" }

func (k ServiceKey) Match(candidate string) bool {
	if !k.Enabled() || strings.TrimSpace(candidate) == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(HashKey(candidate)), []byte(k.hash)) == 1
}
