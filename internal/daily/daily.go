// internal/daily/daily.go
//
// Daily challenge seeding.
// Every player gets the same board on the same UTC day: the board seed is
// derived from HMAC-SHA256(salt, "YYYY-MM-DD"), so it cannot be guessed
// without the server's salt.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// MaxSeed bounds daily seeds to the range random sessions draw from.
const MaxSeed = 1_000_000

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns the board seed for the day containing t.
func Seed(t time.Time, salt string) int64 {
	return SeedForKey(DateKey(t), salt)
}

// SeedForKey returns the board seed for a YYYY-MM-DD date key.
func SeedForKey(dateKey, salt string) int64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(dateKey))
	sum := h.Sum(nil)
	// first 8 bytes as an unsigned integer
	n := binary.BigEndian.Uint64(sum[:8])
	return int64(n % MaxSeed)
}
