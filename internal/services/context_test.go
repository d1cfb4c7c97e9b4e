package services_test

import (
	"context"
	"testing"

	"karaparty/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithCycleID(ctx, "cycle-1")
	ctx = services.WithTeam(ctx, "los-gatos")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.CycleIDFromContext(ctx); !ok || id != "cycle-1" {
		t.Fatalf("unexpected cycle id: %v %v", id, ok)
	}
	if team, ok := services.TeamFromContext(ctx); !ok || team != "los-gatos" {
		t.Fatalf("unexpected team: %v %v", team, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithTeam(ctx, "")
	ctx = services.WithCycleID(ctx, "")
	if _, ok := services.TeamFromContext(ctx); ok {
		t.Fatal("expected no team value")
	}
	if _, ok := services.CycleIDFromContext(ctx); ok {
		t.Fatal("expected no cycle id value")
	}
}
