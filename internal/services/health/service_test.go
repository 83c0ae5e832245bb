package health

import (
	"context"
	"errors"
	"testing"
)

type stubPinger struct{ err error }

func (s stubPinger) PingContext(context.Context) error { return s.err }

func TestStatusWithoutDatabase(t *testing.T) {
	got := NewService(nil, "", "local").Status(context.Background())
	if got["ok"] != true || got["database"] != "memory" || got["store"] != "local" {
		t.Fatalf("unexpected status %v", got)
	}
}

func TestStatusReportsPingFailure(t *testing.T) {
	svc := NewService(stubPinger{err: errors.New("connection refused")}, "postgres", "s3")
	got := svc.Status(context.Background())
	if got["ok"] != false {
		t.Fatalf("expected ok=false, got %v", got)
	}
	if got["error"] != "connection refused" {
		t.Fatalf("unexpected error field %v", got["error"])
	}

	got = NewService(stubPinger{}, "sqlite3", "local").Status(context.Background())
	if got["ok"] != true || got["database"] != "sqlite3" {
		t.Fatalf("unexpected status %v", got)
	}
}
