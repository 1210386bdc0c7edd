package shortener

import (
	"fmt"
	"unicode/utf8"
)

// Alphabet is the character set generated codes are drawn from.
// It leaves out 0, O, 1, l and I so codes can be read back without ambiguity.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

const (
	MinCodeLength     = 4
	MaxCodeLength     = 10
	DefaultCodeLength = 6
)

// Code represents a validated short code.
type Code string

// ParseCode validates the shape of a short code. Length is counted in
// characters. Custom codes may use characters outside Alphabet.
func ParseCode(s string) (Code, error) {
	if s == "" {
		return "", fmt.Errorf("%w: code is empty", ErrInvalidCode)
	}

	if !utf8.ValidString(s) {
		return "", fmt.Errorf("%w: code is not valid UTF-8", ErrInvalidCode)
	}

	if n := utf8.RuneCountInString(s); n < MinCodeLength || n > MaxCodeLength {
		return "", fmt.Errorf("%w: length %d outside [%d,%d]", ErrInvalidCode, n, MinCodeLength, MaxCodeLength)
	}

	return Code(s), nil
}

func (c Code) String() string {
	return string(c)
}
