package models

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// TsUlid sort keys have the form "{epochMillis}_{32 uppercase hex}". Sorting
// them as strings sorts events by time, then by suffix within a millisecond.

// NewTsUlid builds a sort key from a timestamp and a random suffix.
func NewTsUlid(ms int64) string {
	return FormatTsUlid(ms, randomSuffix())
}

// FormatTsUlid joins a timestamp and a suffix.
func FormatTsUlid(ms int64, suffix string) string {
	return strconv.FormatInt(ms, 10) + "_" + suffix
}

// ParseTsUlid splits a sort key into its timestamp and suffix.
func ParseTsUlid(s string) (int64, string, error) {
	msPart, suffix, ok := strings.Cut(s, "_")
	if !ok {
		return 0, "", fmt.Errorf("malformed ts_ulid %q", s)
	}
	ms, err := strconv.ParseInt(msPart, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("malformed ts_ulid %q: %w", s, err)
	}
	if len(suffix) != 32 {
		return 0, "", fmt.Errorf("malformed ts_ulid suffix %q", s)
	}
	return ms, suffix, nil
}

// NextTsUlid picks the timestamp and sort key for an event appended after
// latest. The result sorts strictly after latest.TsUlid even if the clock
// stepped backwards or two appends land in the same millisecond.
func NextTsUlid(now int64, latest *Event) (int64, string) {
	if latest == nil {
		return now, NewTsUlid(now)
	}
	latestMs, latestSuffix, err := ParseTsUlid(latest.TsUlid)
	if err != nil {
		return now, NewTsUlid(now)
	}
	if now > latestMs {
		return now, NewTsUlid(now)
	}

	suffix := randomSuffix()
	if suffix > latestSuffix {
		return latestMs, FormatTsUlid(latestMs, suffix)
	}
	if next, ok := incrementSuffix(latestSuffix); ok {
		return latestMs, FormatTsUlid(latestMs, next)
	}
	return latestMs + 1, NewTsUlid(latestMs + 1)
}

func randomSuffix() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// incrementSuffix adds one to a 128-bit hex suffix. ok is false on overflow.
func incrementSuffix(s string) (string, bool) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return "", false
	}
	for i := len(b) - 1; i >= 0; i-- {
		b[i]++
		if b[i] != 0 {
			return strings.ToUpper(hex.EncodeToString(b)), true
		}
	}
	return "", false
}
