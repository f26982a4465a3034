package types

import "unicode"

// IsToolName returns true if the string can name a tool: it starts with a
// letter or underscore, and continues with letters, digits, underscores,
// dots or hyphens. Dots and hyphens appear in names of remote tools.
func IsToolName(s string) bool {
	if s == "" || len(s) > 128 {
		return false
	}
	for i, r := range s {
		switch {
		case unicode.IsLetter(r), r == '_':
			continue
		case i == 0:
			return false
		case unicode.IsDigit(r), r == '.', r == '-':
			continue
		default:
			return false
		}
	}
	return true
}

// IsIdentifier returns true if the string can be used as a file name: letters,
// digits, underscores, hyphens and dots, not starting with a dot
func IsIdentifier(s string) bool {
	if s == "" || len(s) > 128 || s[0] == '.' {
		return false
	}
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-', r == '.':
			continue
		default:
			return false
		}
	}
	return true
}

// Ptr returns a pointer to the value
func Ptr[T any](v T) *T {
	return &v
}
