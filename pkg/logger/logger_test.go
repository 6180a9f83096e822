package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Level: zerolog.InfoLevel, Output: &buf})

	ctx := logg.WithRequestID(context.Background(), "req-123")
	ctx = logg.WithActorRole(ctx, "staff")
	logg.Info(ctx, "hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["request_id"] != "req-123" {
		t.Fatalf("expected request_id field, got %v", entry["request_id"])
	}
	if entry["actor_role"] != "staff" {
		t.Fatalf("expected actor_role field, got %v", entry["actor_role"])
	}
	if entry["service"] != "test" {
		t.Fatalf("expected service field, got %v", entry["service"])
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != zerolog.DebugLevel {
		t.Fatalf("expected debug level")
	}
	if ParseLevel("") != zerolog.InfoLevel {
		t.Fatalf("expected info default")
	}
	if ParseLevel("bogus") != zerolog.InfoLevel {
		t.Fatalf("expected info fallback for bogus level")
	}
}
