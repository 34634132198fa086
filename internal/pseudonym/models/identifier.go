package models

import (
	"bytes"
	"unicode"
	"unicode/utf8"
)

const (
	// MinLen and MaxLen bound the character count of a pseudonym. MaxLen is
	// also the byte capacity of the encoded form.
	MinLen = 4
	MaxLen = 32
)

// Identifier is a canonical pseudonym: the accepted characters left-packed
// into a fixed buffer and zero padded. Two identifiers are equal iff their
// full buffers are equal.
type Identifier [MaxLen]byte

// ParseIdentifier validates raw and encodes it.
//
// The length check runs first: the rune count must be within [MinLen, MaxLen]
// and the UTF-8 bytes must fit the buffer. Then every rune must be Unicode
// alphanumeric (a letter, a number or an Other_Alphabetic mark such as a
// Devanagari vowel sign), or '_'. NUL is never accepted, so the zero padding cannot
// be forged and the encoding stays injective.
func ParseIdentifier(raw string) (Identifier, error) {
	n := utf8.RuneCountInString(raw)
	if n < MinLen || n > MaxLen || len(raw) > MaxLen {
		return Identifier{}, ErrBadPseudonymLength
	}
	for _, r := range raw {
		if !isIdentifierRune(r) {
			return Identifier{}, ErrBadStringInput
		}
	}
	var id Identifier
	copy(id[:], raw)
	return id, nil
}

// MustParseIdentifier is ParseIdentifier for tests and constants.
func MustParseIdentifier(raw string) Identifier {
	id, err := ParseIdentifier(raw)
	if err != nil {
		panic(err)
	}
	return id
}

func isIdentifierRune(r rune) bool {
	if r == '_' {
		return true
	}
	if r == utf8.RuneError {
		return false
	}
	return unicode.In(r, unicode.L, unicode.N, unicode.Other_Alphabetic)
}

// String returns the pseudonym without padding.
func (id Identifier) String() string {
	return string(bytes.TrimRight(id[:], "\x00"))
}

func (id Identifier) IsZero() bool {
	return id == Identifier{}
}

func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *Identifier) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentifier(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
