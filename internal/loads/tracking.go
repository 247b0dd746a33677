package loads

import (
	"crypto/rand"
	"fmt"
	"time"
)

// no ambiguous characters (0/O, 1/I) so codes survive phone calls
const trackingAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

const trackingSuffixLen = 6

// NewTrackingCode returns a human-readable code like HHL2026K7M2QF.
// Uniqueness is enforced by the DB index; callers retry on collision.
func NewTrackingCode(prefix string, now time.Time) (string, error) {
	buf := make([]byte, trackingSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = trackingAlphabet[int(b)%len(trackingAlphabet)]
	}
	return fmt.Sprintf("%s%d%s", prefix, now.Year(), string(buf)), nil
}
