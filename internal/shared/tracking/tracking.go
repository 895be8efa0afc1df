// Package tracking derives the public reference numbers of tracked entities.
package tracking

import (
	"strings"

	"github.com/google/uuid"
)

const (
	// CodeLength is how many hex digits of the seed a reference keeps.
	CodeLength = 12
	// MaxAttempts bounds creates retried after a reference collision.
	MaxAttempts = 3
)

// Number formats prefix-CODE from the first CodeLength hex digits of seed.
func Number(prefix, seed string) string {
	compact := strings.ReplaceAll(seed, "-", "")
	if len(compact) > CodeLength {
		compact = compact[:CodeLength]
	}
	return prefix + "-" + strings.ToUpper(compact)
}

// Seed is id on the first attempt and a fresh random value on retries, so a
// colliding reference is never generated twice from the same id.
func Seed(id string, attempt int) string {
	if attempt == 0 {
		return id
	}
	return uuid.NewString()
}

// Retry reports whether a create that failed with a duplicate error should
// run again.
func Retry(duplicate bool, attempt int) bool {
	return duplicate && attempt+1 < MaxAttempts
}
