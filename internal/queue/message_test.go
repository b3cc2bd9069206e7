package queue

import (
	"strings"
	"testing"
	"time"
)

func TestNewParseMessage(t *testing.T) {
	msg := NewParseMessage("resume-123", "request-456")
	if msg.ResumeID != "resume-123" || msg.RequestID != "request-456" {
		t.Fatalf("unexpected ids: %+v", msg)
	}
	if msg.Version != MessageVersion {
		t.Fatalf("expected version %d, got %d", MessageVersion, msg.Version)
	}
	if _, err := time.Parse(time.RFC3339, msg.EnqueuedAt); err != nil {
		t.Fatalf("enqueuedAt not RFC3339: %v", err)
	}

	payload, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}
	if !strings.Contains(string(payload), `"resumeId":"resume-123"`) {
		t.Fatalf("unexpected wire format: %s", payload)
	}
}

func TestDecodeMessageRejectsGarbage(t *testing.T) {
	if _, err := DecodeMessage([]byte("{bad")); err == nil {
		t.Fatal("expected decode error")
	}
}
