package checkout

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Optional trims s and returns nil when nothing is left.
func Optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// OptionalInt parses trimmed s, returning nil when it is empty or not an integer.
func OptionalInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// IntOr parses trimmed s or returns fallback.
func IntOr(s string, fallback int) int {
	if n := OptionalInt(s); n != nil {
		return *n
	}
	return fallback
}

// Truncate keeps the first n characters of s.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Categories splits a comma separated list, dropping blank segments.
func Categories(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
