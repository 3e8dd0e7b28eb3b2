package util

import "time"

const layoutYYYYMMDD = "20060102"

// ParseYYYYMMDD parses a compact brokerage date string. Returns (t, true) if it parsed.
func ParseYYYYMMDD(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(layoutYYYYMMDD, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseYYYYMMDDDefault parses a date or returns the default if empty/invalid.
func ParseYYYYMMDDDefault(s string, def time.Time) time.Time {
	if t, ok := ParseYYYYMMDD(s); ok {
		return t
	}
	return def
}

// FormatYYYYMMDD renders a time in the compact brokerage form.
func FormatYYYYMMDD(t time.Time) string {
	return t.Format(layoutYYYYMMDD)
}

// ValidYYYYMMDD reports whether s is a well-formed compact date.
func ValidYYYYMMDD(s string) bool {
	_, ok := ParseYYYYMMDD(s)
	return ok
}
