package goCred

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goCred/store"
)

// AuditErrorCode is the stable error label carried in [AuditEvent].Error.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrRateLimited        AuditErrorCode = "rate_limited"
	auditErrDuplicate          AuditErrorCode = "duplicate"
	auditErrNotFound           AuditErrorCode = "not_found"
	auditErrPasswordTooLong    AuditErrorCode = "password_too_long"
	auditErrPasswordReuse      AuditErrorCode = "password_reuse"
	auditErrEngineUnavailable  AuditErrorCode = "engine_unavailable"
	auditErrInvalidRecord      AuditErrorCode = "invalid_record"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (s *Service) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	username string,
	engine string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if s == nil || s.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Username:  username,
		Engine:    engine,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	s.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrLoginRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrRecordExists):
		return auditErrDuplicate
	case errors.Is(err, ErrRecordNotFound):
		return auditErrNotFound
	case errors.Is(err, ErrPasswordTooLong):
		return auditErrPasswordTooLong
	case errors.Is(err, ErrPasswordReuse):
		return auditErrPasswordReuse
	case errors.Is(err, ErrEngineUnavailable):
		return auditErrEngineUnavailable
	case errors.Is(err, ErrInvalidRecord),
		errors.Is(err, store.ErrMalformed):
		return auditErrInvalidRecord
	case errors.Is(err, store.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
