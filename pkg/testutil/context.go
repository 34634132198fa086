package testutil

import (
	"net/http"

	"selfid/pkg/domain"
	"selfid/pkg/requestcontext"
)

// WithCaller marks req as sent by caller, as the auth middleware would.
func WithCaller(req *http.Request, caller domain.AccountID) *http.Request {
	return req.WithContext(requestcontext.WithCaller(req.Context(), caller))
}

// AccountOf returns the account whose bytes are all b.
func AccountOf(b byte) domain.AccountID {
	var a domain.AccountID
	for i := range a {
		a[i] = b
	}
	return a
}
