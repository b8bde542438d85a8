package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clinicreserve/reservation-system/internal/core/domain"
)

func TestNotificationService_Send(t *testing.T) {
	users := newStubUserRepo()
	users.seed("u-alice", "alice", domain.RolePatient)
	courier := &stubCourier{}
	svc := NewNotificationService(&stubNotificationRepo{users: users}, courier, zerolog.Nop())

	n, err := svc.Send(context.Background(), "alice", "hello")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if n.ID == "" || n.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", n)
	}
	if msgs := courier.messages(); len(msgs) != 1 || msgs[0].Body != "hello" {
		t.Fatalf("expected one delivery, got %+v", msgs)
	}

	if _, err := svc.Send(context.Background(), "ghost", "hello"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.Send(context.Background(), "alice", " "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNotificationService_SendBulk_PartialFailure(t *testing.T) {
	users := newStubUserRepo()
	users.seed("u-alice", "alice", domain.RolePatient)
	users.seed("u-bob", "bob", domain.RolePatient)
	svc := NewNotificationService(&stubNotificationRepo{users: users}, &stubCourier{}, zerolog.Nop())

	res := svc.SendBulk(context.Background(), []string{"alice", "ghost", "bob", "alice"}, "clinic closed")
	if len(res.Sent) != 2 || res.Sent[0] != "alice" || res.Sent[1] != "bob" {
		t.Fatalf("unexpected sent list: %v", res.Sent)
	}
	if err, ok := res.Failed["ghost"]; !ok || !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ghost to fail with ErrUserNotFound, got %v", res.Failed)
	}

	bobNotes, _ := svc.List(context.Background(), "bob")
	if len(bobNotes) != 1 {
		t.Fatalf("expected bob to receive despite earlier failure, got %d", len(bobNotes))
	}
}

func TestNotificationService_List_NewestFirst(t *testing.T) {
	users := newStubUserRepo()
	users.seed("u-alice", "alice", domain.RolePatient)
	svc := NewNotificationService(&stubNotificationRepo{users: users}, &stubCourier{}, zerolog.Nop())

	_, _ = svc.Send(context.Background(), "alice", "first")
	_, _ = svc.Send(context.Background(), "alice", "second")

	notes, err := svc.List(context.Background(), "alice")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(notes) != 2 || notes[0].Message != "second" {
		t.Fatalf("expected newest first, got %+v", notes)
	}
}
