package tracing

import (
	"context"
	"testing"
)

func TestInitTracerDisabledWithoutEndpoint(t *testing.T) {
	tp, err := InitTracer("partsfit", "test", "")
	if err != nil {
		t.Fatal(err)
	}
	if tp != nil {
		t.Fatal("expected no provider without an endpoint")
	}
	if err := Shutdown(context.Background(), tp); err != nil {
		t.Fatalf("shutdown of nil provider: %v", err)
	}
}
