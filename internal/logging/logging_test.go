package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithFieldsReachCore(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromZap(zap.New(core)).Named("safety").With(zap.String("component", "manager"))

	l.Info("preamp applied", zap.Float64("db", -0.325))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}

	e := entries[0]
	if e.LoggerName != "safety" || e.Message != "preamp applied" {
		t.Fatalf("entry = %+v", e)
	}

	fields := e.ContextMap()
	if fields["component"] != "manager" || fields["db"] != -0.325 {
		t.Fatalf("fields = %v", fields)
	}
}

func TestContextCarrier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := FromZap(zap.New(core))

	ctx := WithContext(context.Background(), l)
	FromContext(ctx).Warn("fallback")

	if logs.Len() != 1 {
		t.Fatalf("logs = %d", logs.Len())
	}

	// No logger stored: must not panic.
	FromContext(context.Background()).Info("dropped")
	OrNop(nil).Error("dropped")
}
