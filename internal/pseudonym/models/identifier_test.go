package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIdentifier_Length(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"three characters", "abc"},
		{"thirty three characters", strings.Repeat("a", 33)},
		{"multi-byte runes overflow the buffer", strings.Repeat("é", 17)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseIdentifier(tt.input)
			require.ErrorIs(t, err, ErrBadPseudonymLength)
		})
	}

	t.Run("length is checked before characters", func(t *testing.T) {
		_, err := ParseIdentifier("a-b")
		require.ErrorIs(t, err, ErrBadPseudonymLength)
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		_, err := ParseIdentifier("abcd")
		require.NoError(t, err)
		_, err = ParseIdentifier(strings.Repeat("z", 32))
		require.NoError(t, err)
	})
}

func TestParseIdentifier_Characters(t *testing.T) {
	rejected := map[string]string{
		"hyphen":          "ab-cd",
		"space":           "ab cd",
		"dot":             "alice.01",
		"emoji":           "alice😀",
		"nul byte":        "alice\x00",
		"invalid utf-8":   "alic\xff",
		"tab":             "ali\tce",
		"combining acute": "cafe\u0301",
	}
	for name, input := range rejected {
		t.Run("rejects "+name, func(t *testing.T) {
			_, err := ParseIdentifier(input)
			require.ErrorIs(t, err, ErrBadStringInput)
		})
	}

	accepted := []string{
		"alice_01", "ALICE", "____", "0000", "ñandú", "ελληνικά", "名前です",
		"काका", "namasteः", "ⅠⅡⅢⅣ",
	}
	for _, input := range accepted {
		t.Run("accepts "+input, func(t *testing.T) {
			id, err := ParseIdentifier(input)
			require.NoError(t, err)
			assert.Equal(t, input, id.String())
		})
	}
}

func TestIdentifier_Encoding(t *testing.T) {
	t.Run("left packed and zero padded", func(t *testing.T) {
		id := MustParseIdentifier("alice_01")
		assert.Equal(t, []byte("alice_01"), id[:8])
		for _, b := range id[8:] {
			assert.Zero(t, b)
		}
	})

	t.Run("distinct strings encode distinctly", func(t *testing.T) {
		assert.NotEqual(t, MustParseIdentifier("alice"), MustParseIdentifier("alice_"))
		assert.NotEqual(t, MustParseIdentifier("Alice"), MustParseIdentifier("alice"))
	})

	t.Run("text round-trip", func(t *testing.T) {
		id := MustParseIdentifier("bob_the_builder")
		text, err := id.MarshalText()
		require.NoError(t, err)

		var back Identifier
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, id, back)
	})

	t.Run("unmarshal validates", func(t *testing.T) {
		var id Identifier
		require.ErrorIs(t, id.UnmarshalText([]byte("no")), ErrBadPseudonymLength)
		assert.True(t, id.IsZero())
	})
}
