package pipeline

import (
	"strings"
	"unicode/utf8"
)

const ellipsis = "..."

// CollapseSpaces trims s and folds internal whitespace runs into single spaces.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate caps s at limit runes, replacing the tail with an ellipsis when cut.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	if limit <= len(ellipsis) {
		return string([]rune(s)[:limit])
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:limit-len(ellipsis)]), " ") + ellipsis
}

// Prefix returns the first n runes of s.
func Prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// TruncateList caps a comma-separated list at limit runes without splitting an entry.
func TruncateList(list string, limit int) string {
	if utf8.RuneCountInString(list) <= limit {
		return list
	}
	var b strings.Builder
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		next := part
		if b.Len() > 0 {
			next = ", " + part
		}
		if utf8.RuneCountInString(b.String())+utf8.RuneCountInString(next) > limit {
			break
		}
		b.WriteString(next)
	}
	if b.Len() == 0 {
		return Prefix(list, limit)
	}
	return b.String()
}
