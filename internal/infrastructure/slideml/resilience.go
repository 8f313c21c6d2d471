package slideml

import (
	"context"
	"errors"
	"net"

	"github.com/slidespace/backend/internal/core/domain"
	"github.com/slidespace/backend/internal/infrastructure/resilience"
)

// classifyMLError feeds the circuit breaker. Nothing is marked retryable;
// every retry of a workflow step is user-initiated.
func classifyMLError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		// 4xx means the request itself is wrong; only server-side failures
		// count against the breaker.
		record := statusErr.StatusCode >= 500
		return resilience.ErrorClassification{Retryable: false, RecordFailure: record}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
	}

	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}

// wrapMLError collapses every transport/status/decode failure into one
// upstream error kind; an open breaker surfaces as a temporary condition.
func wrapMLError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrInvalidInput) || domain.IsKind(err, domain.ErrUpstream) || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return domain.WrapError(domain.ErrUpstream, operation, err)
}
