package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "selfid/pkg/domain-errors"
)

const aliceHex = "d43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d"

// TestParseAccountID_Invariants validates the parsing invariant:
// "accounts are exactly 32 bytes of hex and never the zero account"
func TestParseAccountID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseAccountID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects zero account", func(t *testing.T) {
		_, err := ParseAccountID(strings.Repeat("0", 64))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts with and without prefix", func(t *testing.T) {
		a, err := ParseAccountID(aliceHex)
		require.NoError(t, err)
		b, err := ParseAccountID("0x" + aliceHex)
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.Equal(t, "0x"+aliceHex, a.String())
	})

	t.Run("text round-trip", func(t *testing.T) {
		a := MustParseAccountID(aliceHex)
		text, err := a.MarshalText()
		require.NoError(t, err)
		var back AccountID
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, a, back)
	})
}

// TestParseID_SecurityInvariants validates trust boundary parsing rules.
func TestParseID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE accounts;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", aliceHex[:20] + "\x00" + aliceHex[21:], true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Short input", aliceHex[:62], true},
		{"Non hex", strings.Repeat("z", 64), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid", strings.ToUpper(aliceHex), false},
		{"Valid lowercase", aliceHex, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAccountID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestParseCodeHash(t *testing.T) {
	t.Run("zero hash parses but reports zero", func(t *testing.T) {
		h, err := ParseCodeHash("0x" + strings.Repeat("0", 64))
		require.NoError(t, err)
		assert.True(t, h.IsZero())
	})

	t.Run("rejects wrong length", func(t *testing.T) {
		_, err := ParseCodeHash("abcd")
		require.Error(t, err)
	})

	t.Run("account from bytes requires exact length", func(t *testing.T) {
		_, err := AccountFromBytes([]byte{1, 2, 3})
		require.Error(t, err)
		a, err := AccountFromBytes(make([]byte, AccountLen))
		require.NoError(t, err)
		assert.True(t, a.IsZero())
	})
}
