package errors

import (
	"strings"
	"unicode"
)

// Bounds for kolam generation requests. The generator endpoint accepts
// sizes between MinKolamSize and MaxKolamSize inclusive.
const (
	MinKolamSize = 2
	MaxKolamSize = 50
)

// ValidateKolamSize validates a requested kolam grid size.
func ValidateKolamSize(size int) error {
	if size < MinKolamSize || size > MaxKolamSize {
		return New(ErrCodeInvalidSize, "kolam size must be between %d and %d, got %d", MinKolamSize, MaxKolamSize, size)
	}
	return nil
}

// ValidateHexColor validates a color string of the form "#RGB" or "#RRGGBB".
func ValidateHexColor(s string) error {
	if s == "" {
		return New(ErrCodeInvalidColor, "color cannot be empty")
	}
	if !strings.HasPrefix(s, "#") {
		return New(ErrCodeInvalidColor, "color %q must start with '#'", s)
	}
	hex := s[1:]
	if len(hex) != 3 && len(hex) != 6 {
		return New(ErrCodeInvalidColor, "color %q must be #RGB or #RRGGBB", s)
	}
	for _, r := range hex {
		if !isHexDigit(r) {
			return New(ErrCodeInvalidColor, "color %q contains non-hex character %q", s, r)
		}
	}
	return nil
}

// ValidateAssetName validates a glyph asset filename for safety.
// It ensures the name is a simple basename without path components.
func ValidateAssetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "asset name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "asset name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "asset name contains invalid control characters")
		}
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "asset name cannot contain path separators")
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "asset name cannot contain '..'")
	}
	return nil
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
