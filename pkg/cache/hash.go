package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// hashKey returns prefix:sha256(parts), with parts separated by NUL so that
// ("ab", "c") and ("a", "bc") never collide.
func hashKey(prefix string, parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return prefix + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
