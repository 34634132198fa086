// Package e2e drives a running selfid server through Gherkin scenarios.
package e2e

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestContext holds the server under test and the last response.
type TestContext struct {
	BaseURL    string
	SigningKey string
	Issuer     string
	Audience   string
	// Authority is the account the server was started with.
	Authority string

	http       *http.Client
	lastStatus int
	lastBody   []byte
}

func NewTestContext(baseURL, signingKey, authority string) *TestContext {
	return &TestContext{
		BaseURL:    baseURL,
		SigningKey: signingKey,
		Issuer:     "selfid",
		Audience:   "selfid",
		Authority:  authority,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

// AccountOf maps an actor name to a stable account. "authority" is the
// configured authority.
func (tc *TestContext) AccountOf(actor string) string {
	if actor == "authority" {
		return tc.Authority
	}
	sum := sha256.Sum256([]byte("selfid-e2e/" + actor))
	return "0x" + hex.EncodeToString(sum[:])
}

func (tc *TestContext) token(actor string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   tc.AccountOf(actor),
		Issuer:    tc.Issuer,
		Audience:  jwt.ClaimStrings{tc.Audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(5 * time.Minute)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(tc.SigningKey))
}

// Do sends a request as actor. An empty actor sends no token.
func (tc *TestContext) Do(method, path, actor string, body any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, tc.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		token, err := tc.token(actor)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := tc.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) GetLastResponseStatus() int {
	return tc.lastStatus
}

// GetResponseField returns a top-level field of the last JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var body map[string]any
	if err := json.Unmarshal(tc.lastBody, &body); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w (%s)", err, tc.lastBody)
	}
	value, ok := body[field]
	if !ok {
		return nil, fmt.Errorf("field %q not in response %s", field, tc.lastBody)
	}
	return value, nil
}
