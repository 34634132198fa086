package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"selfid/internal/pseudonym/models"
	"selfid/pkg/domain"
	dErrors "selfid/pkg/domain-errors"
	txcontext "selfid/pkg/platform/tx"
	"selfid/pkg/requestcontext"
)

// emit hands the event to the emitter and logs it as an audit line once the
// transaction commits. It runs inside the caller's transaction; a failing
// emitter rolls the call back.
func (s *Service) emit(ctx context.Context, event models.Event) error {
	txcontext.AfterCommit(ctx, func() { s.logAudit(ctx, event) })
	if s.emitter == nil {
		return nil
	}
	if err := s.emitter.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to emit "+string(event.Type()))
	}
	return nil
}

func (s *Service) logAudit(ctx context.Context, event models.Event) {
	if s.logger == nil {
		return
	}
	args := []any{
		"event", string(event.Type()),
		"log_type", "audit",
		"at", uint32(event.Height()),
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	switch e := event.(type) {
	case models.IdentityInserted:
		args = append(args, "account", e.Account.String(), "pseudonym", e.Pseudonym)
	case models.IdentityRemoved:
		args = append(args, "account", e.Account.String(), "pseudonym", e.Pseudonym)
	case models.IdentityVerified:
		args = append(args, "verifier", e.Verifier.String(), "account", e.Account.String(), "pseudonym", e.Pseudonym)
	case models.VerifierUpdated:
		args = append(args, "who", e.Who.String(), "removed", e.Removed)
	case models.ContractUpgraded:
		args = append(args, "code_hash", e.NewCodeHash.String())
	}
	s.logger.InfoContext(ctx, string(event.Type()), args...)
}

// begin opens a span for one operation. The returned func closes it and
// records duration and, for registry errors, the rejection kind.
func (s *Service) begin(ctx context.Context, operation string, caller domain.AccountID) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "pseudonym."+operation)
	if !caller.IsZero() {
		span.SetAttributes(attribute.String("selfid.caller", caller.String()))
	}
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if kind, ok := models.KindOf(err); ok {
				span.SetAttributes(attribute.String("selfid.error_kind", string(kind)))
				if s.metrics != nil {
					s.metrics.IncrementRejection(string(kind))
				}
			} else if s.logger != nil {
				s.logger.ErrorContext(ctx, "registry operation failed",
					"operation", operation,
					"error", err,
				)
			}
		}
		if s.metrics != nil {
			s.metrics.ObserveOperation(operation, start)
		}
		span.End()
	}
}

func (s *Service) logError(ctx context.Context, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.ErrorContext(ctx, msg, args...)
}
