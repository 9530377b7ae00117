package validate

import (
	"strings"
	"unicode/utf8"
)

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// MaxRunes reports whether value fits in limit characters after trimming.
func MaxRunes(value string, limit int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(value)) <= limit
}
