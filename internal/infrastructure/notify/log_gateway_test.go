package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clinicreserve/reservation-system/internal/core/ports"
)

func TestLogGateway_WritesMessage(t *testing.T) {
	var buf bytes.Buffer
	gw := NewLogGateway(zerolog.New(&buf))

	if err := gw.Send(context.Background(), ports.Message{Recipient: "alice", Subject: "hi", Body: "code 123456"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"recipient":"alice"`) || !strings.Contains(out, "code 123456") {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestLogGateway_CanceledContext(t *testing.T) {
	gw := NewLogGateway(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := gw.Send(ctx, ports.Message{Recipient: "alice"}); err == nil {
		t.Fatalf("expected error for canceled context")
	}
}
