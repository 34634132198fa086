// Package client submits registry commands to a selfid server over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"selfid/internal/pseudonym/command"
	"selfid/internal/pseudonym/handler"
	"selfid/pkg/platform/httputil"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status      int
	Code        string
	Kind        string
	Description string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%d %s", e.Status, e.Code)
	if e.Kind != "" {
		msg += " (" + e.Kind + ")"
	}
	if e.Description != "" {
		msg += ": " + e.Description
	}
	return msg
}

// Client talks to one server as the account its token names.
type Client struct {
	Base  string
	Token string
	HTTP  *http.Client
}

func New(base, token string) *Client {
	return &Client{
		Base:  strings.TrimRight(base, "/"),
		Token: token,
		HTTP:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Do submits cmd and decodes its result.
func (c *Client) Do(ctx context.Context, cmd command.Command) (command.Result, error) {
	switch cmd := cmd.(type) {
	case command.ClaimPseudonym:
		return command.Result{}, c.send(ctx, http.MethodPut, "/v1/pseudonyms/me", handler.PseudonymRequest{Pseudonym: cmd.Pseudonym}, nil)
	case command.VerifyPseudonym:
		return command.Result{}, c.send(ctx, http.MethodPost, "/v1/verifications", handler.PseudonymRequest{Pseudonym: cmd.Pseudonym}, nil)
	case command.SetVerifier:
		method := http.MethodPut
		if !cmd.Add {
			method = http.MethodDelete
		}
		return command.Result{}, c.send(ctx, method, "/v1/admin/verifiers/"+cmd.Verifier.String(), nil, nil)
	case command.ResetAll:
		return command.Result{}, c.send(ctx, http.MethodPost, "/v1/admin/reset", nil, nil)
	case command.RedirectCode:
		return command.Result{}, c.send(ctx, http.MethodPost, "/v1/admin/code", handler.RedirectCodeRequest{CodeHash: cmd.CodeHash.String()}, nil)
	case command.GetPseudonym:
		var resp handler.PseudonymResponse
		if err := c.send(ctx, http.MethodGet, "/v1/pseudonyms/me", nil, &resp); err != nil {
			return command.Result{}, err
		}
		return command.Result{Pseudonym: resp.Pseudonym}, nil
	case command.GetPseudonymOf:
		var resp handler.PseudonymResponse
		if err := c.send(ctx, http.MethodGet, "/v1/accounts/"+cmd.Account.String()+"/pseudonym", nil, &resp); err != nil {
			return command.Result{}, err
		}
		return command.Result{Pseudonym: resp.Pseudonym}, nil
	case command.GetAuthority:
		var resp handler.AuthorityResponse
		if err := c.send(ctx, http.MethodGet, "/v1/authority", nil, &resp); err != nil {
			return command.Result{}, err
		}
		return command.Result{Authority: &resp.Authority}, nil
	default:
		return command.Result{}, fmt.Errorf("unsupported command %T", cmd)
	}
}

// Info fetches the attestation record of pseudonym.
func (c *Client) Info(ctx context.Context, pseudonym string) (*handler.InfoResponse, error) {
	var resp handler.InfoResponse
	if err := c.send(ctx, http.MethodGet, "/v1/pseudonyms/"+url.PathEscape(pseudonym), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e httputil.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil {
			apiErr.Code = e.Error
			apiErr.Kind = e.Kind
			apiErr.Description = e.ErrorDescription
		} else {
			apiErr.Code = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
