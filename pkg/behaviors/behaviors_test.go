package behaviors

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dualizor/dualizor/pkg/types"
)

type pingCmd struct {
	types.CommandTag
}

func TestRecoveryConvertsPanicToError(t *testing.T) {
	b, err := NewRecovery(nil)
	if err != nil {
		t.Fatalf("NewRecovery failed: %v", err)
	}

	res, err := b.Handle(context.Background(), pingCmd{}, func(ctx context.Context) (any, error) {
		panic("handler exploded")
	})
	if res != nil {
		t.Errorf("Expected nil result after panic, got %v", res)
	}
	if !types.IsErrCode(err, types.ErrCodeHandlerFailed) {
		t.Errorf("Expected HANDLER_FAILED, got %v", err)
	}
}

func TestRecoveryPassesThroughNormalFlow(t *testing.T) {
	b, err := NewRecovery(nil)
	if err != nil {
		t.Fatalf("NewRecovery failed: %v", err)
	}

	res, err := b.Handle(context.Background(), pingCmd{}, func(ctx context.Context) (any, error) {
		return "pong", nil
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if res != "pong" {
		t.Errorf("Expected pong, got %v", res)
	}
}

func TestRecoveryPreservesInnerError(t *testing.T) {
	b, err := NewRecovery(nil)
	if err != nil {
		t.Fatalf("NewRecovery failed: %v", err)
	}

	innerErr := errors.New("domain failure")
	_, err = b.Handle(context.Background(), pingCmd{}, func(ctx context.Context) (any, error) {
		return nil, innerErr
	})
	if !errors.Is(err, innerErr) {
		t.Errorf("Expected inner error unchanged, got %v", err)
	}
}

func TestLoggingPassesResultThrough(t *testing.T) {
	b, err := NewLogging(nil)
	if err != nil {
		t.Fatalf("NewLogging failed: %v", err)
	}

	res, err := b.Handle(context.Background(), pingCmd{}, func(ctx context.Context) (any, error) {
		return 7, nil
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if res != 7 {
		t.Errorf("Expected 7, got %v", res)
	}

	failErr := errors.New("boom")
	if _, err := b.Handle(context.Background(), pingCmd{}, func(ctx context.Context) (any, error) {
		return nil, failErr
	}); !errors.Is(err, failErr) {
		t.Errorf("Expected failure unchanged, got %v", err)
	}
}

func TestMetricsCountsByStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	b, err := NewMetrics("test", reg)
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	if _, err := b.Handle(context.Background(), pingCmd{}, func(ctx context.Context) (any, error) {
		return nil, nil
	}); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if _, err := b.Handle(context.Background(), pingCmd{}, func(ctx context.Context) (any, error) {
		return nil, types.NewError(types.ErrCodeNotFound, "missing")
	}); err == nil {
		t.Fatal("Expected inner error propagated")
	}

	name := "behaviors.pingCmd"
	if got := testutil.ToFloat64(b.dispatches.WithLabelValues(name, "ok")); got != 1 {
		t.Errorf("Expected 1 ok dispatch, got %v", got)
	}
	if got := testutil.ToFloat64(b.dispatches.WithLabelValues(name, types.ErrCodeNotFound)); got != 1 {
		t.Errorf("Expected 1 NOT_FOUND dispatch, got %v", got)
	}
}

func TestMetricsRegistersCollectorsOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewMetrics("dup", reg); err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}
	if _, err := NewMetrics("dup", reg); err == nil {
		t.Error("Expected duplicate registration error")
	}
}

func TestTracingPassesResultThrough(t *testing.T) {
	b := NewTracing(nil)

	res, err := b.Handle(context.Background(), pingCmd{}, func(ctx context.Context) (any, error) {
		return "traced", nil
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if res != "traced" {
		t.Errorf("Expected traced, got %v", res)
	}

	failErr := errors.New("boom")
	if _, err := b.Handle(context.Background(), pingCmd{}, func(ctx context.Context) (any, error) {
		return nil, failErr
	}); !errors.Is(err, failErr) {
		t.Errorf("Expected failure unchanged, got %v", err)
	}
}
