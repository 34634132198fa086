package commands

import (
	"bytes"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selfid/internal/chain"
	jwttoken "selfid/internal/jwt_token"
	"selfid/internal/pseudonym/handler"
	"selfid/internal/pseudonym/service"
	"selfid/internal/pseudonym/store"
	"selfid/pkg/domain"
)

const signingKey = "ctl-test-key"

func accountHex(b byte) string {
	return "0x" + strings.Repeat(hex.EncodeToString([]byte{b}), domain.AccountLen)
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry, err := service.New(store.NewInMemory(), service.WithLogger(logger), service.WithClock(chain.Fixed(3)))
	require.NoError(t, err)
	_, err = registry.Instantiate(t.Context(), domain.MustParseAccountID(accountHex(0x01)))
	require.NoError(t, err)

	validator := jwttoken.NewJWTServiceAdapter(jwttoken.NewJWTService(signingKey, "selfid", "selfid"))
	r := chi.NewRouter()
	handler.New(registry, validator, logger).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config = viper.New()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append(args, "--config", t.TempDir()+"/missing.yaml"))
	err := root.Execute()
	return out.String(), err
}

func TestCommands_RoundTrip(t *testing.T) {
	srv := newServer(t)
	as := func(b byte) []string {
		return []string{"--server", srv.URL, "--account", accountHex(b), "--signing-key", signingKey}
	}

	_, err := run(t, append([]string{"verifier", "add", accountHex(0x02)}, as(0x01)...)...)
	require.NoError(t, err)

	out, err := run(t, append([]string{"claim", "holder_1"}, as(0x03)...)...)
	require.NoError(t, err)
	assert.Equal(t, "claimed holder_1\n", out)

	_, err = run(t, append([]string{"verify", "holder_1"}, as(0x02)...)...)
	require.NoError(t, err)

	out, err = run(t, "lookup", accountHex(0x03), "--server", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "holder_1\n", out)

	out, err = run(t, "info", "holder_1", "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "verified at: 3")

	out, err = run(t, append([]string{"whoami"}, as(0x04)...)...)
	require.NoError(t, err)
	assert.Equal(t, "(none)\n", out)

	_, err = run(t, append([]string{"reset"}, as(0x03)...)...)
	assert.ErrorContains(t, err, "insufficient_permission")
}

func TestToken(t *testing.T) {
	out, err := run(t, "token", accountHex(0x05), "--signing-key", signingKey)
	require.NoError(t, err)

	claims, err := jwttoken.NewJWTService(signingKey, "selfid", "selfid").ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	account, err := claims.Account()
	require.NoError(t, err)
	assert.Equal(t, accountHex(0x05), account.String())
}

func TestUpgradeNeedsASource(t *testing.T) {
	_, err := run(t, "upgrade")
	assert.ErrorContains(t, err, "--wasm or --hash is required")
}

func TestCodeHashOf(t *testing.T) {
	h := CodeHashOf([]byte("wasm"))
	assert.False(t, h.IsZero())
	assert.NotEqual(t, h, CodeHashOf([]byte("wasm2")))
}
