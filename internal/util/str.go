package util

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Datetime is the format to use anywhere we need to output a date+time to an user.
func Datetime(t TimeAsTimestamp) string {
	return t.Time().UTC().Format("2006-01-02 15h04 MST")
}

// FormatDuration prettifies a duration by removing useless units.
// eg. 1h20m0s -> 1h20m
func FormatDuration(d time.Duration) string {
	var prefix string
	if d > (24 * time.Hour) {
		prefix = fmt.Sprintf("%dd", d/(24*time.Hour))
		d = (d % (24 * time.Hour)).Truncate(time.Hour)
	}

	ret := strings.TrimSuffix(d.Truncate(time.Second).String(), "0s")
	if strings.HasSuffix(ret, "h0m") {
		return prefix + strings.TrimSuffix(ret, "0m")
	}

	return prefix + ret
}

// Slugify lowercases str and replaces every run of non alphanumeric
// characters by a single dash, eg. "Old Mines" -> "old-mines".
func Slugify(str string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(str)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}

		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
