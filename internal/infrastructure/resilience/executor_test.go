package resilience

import (
	"context"
	"errors"
	"testing"
)

func TestMLConfigDoesNotRetry(t *testing.T) {
	exec := NewExecutor(MLConfig())

	calls := 0
	err := exec.Execute(context.Background(), "ml.test", func(context.Context) error {
		calls++
		return errors.New("boom")
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	})

	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected exactly one attempt, got %d", calls)
	}
}

func TestExecutorRetriesRetryableErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RetryInitialBackoff = 0
	cfg.BreakerEnabled = false
	exec := NewExecutor(cfg)

	calls := 0
	err := exec.Execute(context.Background(), "queue.test", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	})

	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	cfg := MLConfig()
	cfg.BreakerMinRequests = 2
	exec := NewExecutor(cfg)

	fail := func(context.Context) error { return errors.New("down") }
	classify := func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}

	for i := 0; i < 2; i++ {
		_ = exec.Execute(context.Background(), "ml.pptx", fail, classify)
	}

	err := exec.Execute(context.Background(), "ml.pptx", fail, classify)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}
