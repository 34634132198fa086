package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"selfid/internal/pseudonym/command"
	"selfid/internal/pseudonym/models"
	"selfid/pkg/domain"
	dErrors "selfid/pkg/domain-errors"
	"selfid/pkg/platform/httputil"
	"selfid/pkg/platform/middleware/auth"
	"selfid/pkg/platform/middleware/ratelimit"
	"selfid/pkg/platform/middleware/request"
	"selfid/pkg/requestcontext"
)

const maxBodyBytes = 4 << 10

// Service is the registry surface the HTTP layer drives.
type Service interface {
	command.Registry
	Info(ctx context.Context, raw string) (*models.Info, error)
}

// Handler serves the registry over HTTP.
type Handler struct {
	logger    *slog.Logger
	service   Service
	validator auth.JWTValidator
	limiter   *ratelimit.Limiter
}

type Option func(*Handler)

// WithRateLimiter throttles the authenticated routes.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(h *Handler) {
		h.limiter = limiter
	}
}

// New creates a registry Handler.
func New(service Service, validator auth.JWTValidator, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		logger:    logger,
		service:   service,
		validator: validator,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the registry routes. Reads are public; every call that
// acts as a caller needs a bearer token.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Get("/v1/authority", h.handleGetAuthority)
		r.Get("/v1/accounts/{account}/pseudonym", h.handleGetPseudonymOf)
		r.Get("/v1/pseudonyms/{pseudonym}", h.handleGetInfo)
	})

	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Use(auth.RequireAuth(h.validator, h.logger))
		if h.limiter != nil {
			r.Use(h.limiter.Middleware(h.logger))
		}
		r.Get("/v1/pseudonyms/me", h.handleGetPseudonym)
		r.Put("/v1/pseudonyms/me", h.handleClaim)
		r.Post("/v1/verifications", h.handleVerify)
		r.Post("/v1/admin/code", h.handleRedirectCode)
		r.Post("/v1/admin/reset", h.handleResetAll)
		r.Put("/v1/admin/verifiers/{account}", h.handleSetVerifier(true))
		r.Delete("/v1/admin/verifiers/{account}", h.handleSetVerifier(false))
	})
}

func (h *Handler) handleClaim(w http.ResponseWriter, r *http.Request) {
	var req PseudonymRequest
	if !h.decode(w, r, &req) {
		return
	}
	if _, ok := h.dispatch(w, r, command.ClaimPseudonym{Pseudonym: req.Pseudonym}); ok {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req PseudonymRequest
	if !h.decode(w, r, &req) {
		return
	}
	if _, ok := h.dispatch(w, r, command.VerifyPseudonym{Pseudonym: req.Pseudonym}); ok {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) handleGetPseudonym(w http.ResponseWriter, r *http.Request) {
	caller, _ := requestcontext.Caller(r.Context())
	result, ok := h.dispatch(w, r, command.GetPseudonym{})
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPseudonymResponse(caller, result))
}

func (h *Handler) handleGetPseudonymOf(w http.ResponseWriter, r *http.Request) {
	account, err := domain.ParseAccountID(chi.URLParam(r, "account"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	result, ok := h.dispatch(w, r, command.GetPseudonymOf{Account: account})
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPseudonymResponse(account, result))
}

func (h *Handler) handleGetInfo(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "pseudonym")
	info, err := h.service.Info(r.Context(), raw)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toInfoResponse(raw, info))
}

func (h *Handler) handleGetAuthority(w http.ResponseWriter, r *http.Request) {
	result, ok := h.dispatch(w, r, command.GetAuthority{})
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AuthorityResponse{Authority: *result.Authority})
}

func (h *Handler) handleRedirectCode(w http.ResponseWriter, r *http.Request) {
	var req RedirectCodeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if _, ok := h.dispatch(w, r, command.RedirectCode{CodeHash: req.parsedHash}); ok {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) handleResetAll(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.dispatch(w, r, command.ResetAll{}); ok {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) handleSetVerifier(add bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		verifier, err := domain.ParseAccountID(chi.URLParam(r, "account"))
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		if _, ok := h.dispatch(w, r, command.SetVerifier{Verifier: verifier, Add: add}); ok {
			w.WriteHeader(http.StatusNoContent)
		}
	}
}

// dispatch runs cmd as the authenticated caller, or the zero account on
// public routes. It writes the error response itself and reports success.
func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, cmd command.Command) (command.Result, bool) {
	ctx := r.Context()
	caller, _ := requestcontext.Caller(ctx)
	result, err := command.Dispatch(ctx, h.service, caller, cmd)
	if err != nil {
		h.writeError(w, r, err, "command", cmd.Name())
		return command.Result{}, false
	}
	return result, true
}

type validatable interface {
	Validate() error
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req validatable) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return false
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, r, err)
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, args ...any) {
	ctx := r.Context()
	kind, _ := models.KindOf(err)
	args = append(args,
		"error", err.Error(),
		"kind", string(kind),
		"request_id", requestcontext.RequestID(ctx),
	)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "registry request failed", args...)
	} else {
		h.logger.WarnContext(ctx, "registry request rejected", args...)
	}
	httputil.WriteErrorKind(w, err, string(kind))
}
