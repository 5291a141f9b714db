package goSignIn

import (
	"context"
	"errors"

	"github.com/MrEthical07/goSignIn/store"
)

const (
	auditEventSignInStarted   = "sign_in_started"
	auditEventSignInRejected  = "sign_in_rejected"
	auditEventRedirectIgnored = "redirect_ignored"
	auditEventExchangeSuccess = "exchange_success"
	auditEventExchangeFailure = "exchange_failure"
	auditEventRefreshSuccess  = "refresh_success"
	auditEventRefreshFailure  = "refresh_failure"
	auditEventProfileSuccess  = "profile_success"
	auditEventProfileFailure  = "profile_failure"
	auditEventSignOut         = "sign_out"
	auditEventStoreFailure    = "store_failure"
)

// AuditErrorCode defines a public type used by goSignIn APIs.
//
// AuditErrorCode values are stable strings written into [AuditEvent.Error];
// they never contain token material.
type AuditErrorCode string

const (
	auditErrNoClientID          AuditErrorCode = "no_client_id"
	auditErrNoScope             AuditErrorCode = "no_scope"
	auditErrNoRefreshToken      AuditErrorCode = "no_refresh_token"
	auditErrNoAccessToken       AuditErrorCode = "no_access_token"
	auditErrNotSignedIn         AuditErrorCode = "not_signed_in"
	auditErrNoUser              AuditErrorCode = "no_user"
	auditErrJSONDecode          AuditErrorCode = "json_decode"
	auditErrRequestConstruction AuditErrorCode = "request_construction"
	auditErrNetwork             AuditErrorCode = "network"
	auditErrNoData              AuditErrorCode = "no_data"
	auditErrHTTP                AuditErrorCode = "http_error"
	auditErrRedirectOpen        AuditErrorCode = "redirect_open"
	auditErrEngineClosed        AuditErrorCode = "engine_closed"
	auditErrStoreUnavailable    AuditErrorCode = "store_unavailable"
	auditErrStoreCorrupt        AuditErrorCode = "store_corrupt"
	auditErrInternal            AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	attemptID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp:     e.now().UTC(),
		EventType:     eventType,
		AttemptID:     attemptID,
		CorrelationID: correlationIDFromContext(ctx),
		Subject:       e.subject(),
		Success:       success,
		Metadata:      metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

// subject is the Google account id of the current user, if known.
func (e *Engine) subject() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.user == nil {
		return ""
	}
	return e.user.ID
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	var httpErr *HTTPError
	switch {
	case errors.Is(err, ErrNoClientID):
		return auditErrNoClientID
	case errors.Is(err, ErrNoScope):
		return auditErrNoScope
	case errors.Is(err, ErrNoRefreshToken):
		return auditErrNoRefreshToken
	case errors.Is(err, ErrNoAccessToken):
		return auditErrNoAccessToken
	case errors.Is(err, ErrNotSignedIn):
		return auditErrNotSignedIn
	case errors.Is(err, ErrNoUser):
		return auditErrNoUser
	case errors.Is(err, ErrJSONDecode):
		return auditErrJSONDecode
	case errors.Is(err, ErrRequestConstruction):
		return auditErrRequestConstruction
	case errors.Is(err, ErrNetwork):
		return auditErrNetwork
	case errors.Is(err, ErrNoData):
		return auditErrNoData
	case errors.As(err, &httpErr):
		return auditErrHTTP
	case errors.Is(err, ErrRedirectOpen):
		return auditErrRedirectOpen
	case errors.Is(err, ErrEngineClosed):
		return auditErrEngineClosed
	case errors.Is(err, store.ErrRedisUnavailable):
		return auditErrStoreUnavailable
	case errors.Is(err, store.ErrCorruptRecord):
		return auditErrStoreCorrupt
	default:
		return auditErrInternal
	}
}
