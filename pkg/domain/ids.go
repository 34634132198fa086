// Package domain holds the value types shared across the registry: account
// identities supplied by the execution environment, block heights and code
// hashes.
package domain

import (
	"encoding/hex"
	"strings"

	dErrors "selfid/pkg/domain-errors"
)

// AccountLen is the byte length of an account identity.
const AccountLen = 32

// AccountID is the opaque identity of a caller. The registry never mints one;
// it only compares and stores what the environment supplies.
type AccountID [AccountLen]byte

// BlockHeight is the environment's monotonically increasing counter, used as
// the timestamp of every state change.
type BlockHeight uint32

// CodeHash identifies a code blob for the upgrade path.
type CodeHash [32]byte

// ParseAccountID decodes a 64-digit hex account, with optional 0x prefix.
// The all-zero account is rejected.
func ParseAccountID(s string) (AccountID, error) {
	var a AccountID
	if err := decodeFixedHex(s, a[:], "account"); err != nil {
		return AccountID{}, err
	}
	if a.IsZero() {
		return AccountID{}, dErrors.New(dErrors.CodeInvalidInput, "account must not be zero")
	}
	return a, nil
}

// MustParseAccountID is ParseAccountID for constants and tests.
func MustParseAccountID(s string) AccountID {
	a, err := ParseAccountID(s)
	if err != nil {
		panic(err)
	}
	return a
}

// AccountFromBytes copies b into an AccountID. b must be exactly AccountLen bytes.
func AccountFromBytes(b []byte) (AccountID, error) {
	if len(b) != AccountLen {
		return AccountID{}, dErrors.New(dErrors.CodeInvalidInput, "account must be 32 bytes")
	}
	var a AccountID
	copy(a[:], b)
	return a, nil
}

func (a AccountID) IsZero() bool {
	return a == AccountID{}
}

func (a AccountID) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a AccountID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *AccountID) UnmarshalText(text []byte) error {
	parsed, err := ParseAccountID(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseCodeHash decodes a 64-digit hex code hash, with optional 0x prefix.
func ParseCodeHash(s string) (CodeHash, error) {
	var h CodeHash
	if err := decodeFixedHex(s, h[:], "code hash"); err != nil {
		return CodeHash{}, err
	}
	return h, nil
}

func (h CodeHash) IsZero() bool {
	return h == CodeHash{}
}

func (h CodeHash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h CodeHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *CodeHash) UnmarshalText(text []byte) error {
	parsed, err := ParseCodeHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

func decodeFixedHex(s string, dst []byte, what string) error {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return dErrors.New(dErrors.CodeInvalidInput, what+" is required")
	}
	if len(s) != hex.EncodedLen(len(dst)) {
		return dErrors.New(dErrors.CodeInvalidInput, what+" must be 64 hex digits")
	}
	if _, err := hex.Decode(dst, []byte(s)); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, what+" is not valid hex")
	}
	return nil
}
