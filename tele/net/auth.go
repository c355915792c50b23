package telenet

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// MacSize is the fixed width of the frame integrity tag.
const MacSize = 8

var errAuthSecretWeak = fmt.Errorf("secret must be >= 8 bytes")

// Mac1 returns the big-endian first uint64 of HMAC-SHA256 over the
// concatenation of parts. The key is shared per deployment, not per device;
// the frame format does not care, so per-device keying is a caller-side
// strengthening. `secret` must be at least 8 bytes.
func Mac1(secret []byte, parts ...[]byte) (uint64, error) {
	if len(secret) < MacSize {
		return 0, errAuthSecretWeak
	}
	var b [sha256.Size]byte
	h := hmac.New(sha256.New, secret)
	for _, p := range parts {
		if _, err := h.Write(p); err != nil {
			return 0, err
		}
	}
	return binary.BigEndian.Uint64(h.Sum(b[:0])), nil
}
