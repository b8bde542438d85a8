package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/clinicreserve/reservation-system/internal/core/domain"
	"github.com/clinicreserve/reservation-system/internal/core/ports"
)

func TestAppointmentService_BookCancelRebookScenario(t *testing.T) {
	f := newLedgerFixture()
	f.clinics.seed(1, "Downtown")
	f.users.seed("u-alice", "alice", domain.RolePatient)
	f.users.seed("u-bob", "bob", domain.RolePatient)
	ctx := context.Background()
	at := mustTime("2024-01-10 09:00")

	alice, err := f.svc.Book(ctx, "u-alice", 1, at)
	if err != nil {
		t.Fatalf("alice booking failed: %v", err)
	}
	if alice.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", alice.Status)
	}

	if _, err := f.svc.Book(ctx, "u-bob", 1, at); !errors.Is(err, domain.ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken for bob, got %v", err)
	}

	canceled, err := f.svc.Cancel(ctx, alice.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if canceled.Status != domain.StatusCanceled {
		t.Fatalf("expected canceled, got %s", canceled.Status)
	}

	bob, err := f.svc.Book(ctx, "u-bob", 1, at)
	if err != nil {
		t.Fatalf("bob booking after cancel failed: %v", err)
	}
	if bob.ID == alice.ID {
		t.Fatalf("expected a fresh appointment id")
	}
}

func TestAppointmentService_Book_TruncatesToMinute(t *testing.T) {
	f := newLedgerFixture()
	f.clinics.seed(1, "Downtown")
	f.users.seed("u-alice", "alice", domain.RolePatient)
	f.users.seed("u-bob", "bob", domain.RolePatient)
	ctx := context.Background()

	if _, err := f.svc.Book(ctx, "u-alice", 1, mustTime("2024-01-10 09:00").Add(15*time.Second)); err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if _, err := f.svc.Book(ctx, "u-bob", 1, mustTime("2024-01-10 09:00").Add(40*time.Second)); !errors.Is(err, domain.ErrSlotTaken) {
		t.Fatalf("expected same-minute booking to conflict, got %v", err)
	}
}

func TestAppointmentService_Book_UnknownClinicOrUser(t *testing.T) {
	f := newLedgerFixture()
	f.clinics.seed(1, "Downtown")
	f.users.seed("u-alice", "alice", domain.RolePatient)
	ctx := context.Background()

	if _, err := f.svc.Book(ctx, "u-alice", 99, mustTime("2024-01-10 09:00")); !errors.Is(err, domain.ErrClinicNotFound) {
		t.Fatalf("expected ErrClinicNotFound, got %v", err)
	}
	if _, err := f.svc.Book(ctx, "ghost", 1, mustTime("2024-01-10 09:00")); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAppointmentService_Book_MergesIntoCapacitySlot(t *testing.T) {
	f := newLedgerFixture()
	f.clinics.seed(2, "Uptown")
	f.users.seed("u-alice", "alice", domain.RolePatient)
	f.users.seed("u-bob", "bob", domain.RolePatient)
	ctx := context.Background()
	at := mustTime("2024-02-01 10:00")

	slot, err := f.svc.AddCapacitySlot(ctx, 2, at)
	if err != nil {
		t.Fatalf("AddCapacitySlot failed: %v", err)
	}
	if !slot.IsOpenSlot() || slot.Status != domain.StatusPending {
		t.Fatalf("expected open pending slot, got %+v", slot)
	}

	booked, err := f.svc.Book(ctx, "u-alice", 2, at)
	if err != nil {
		t.Fatalf("booking into capacity slot failed: %v", err)
	}
	if booked.ID != slot.ID {
		t.Fatalf("expected booking to reuse slot %d, got %d", slot.ID, booked.ID)
	}
	if !booked.BelongsTo("u-alice") {
		t.Fatalf("expected slot assigned to alice")
	}
	if f.appointments.count() != 1 {
		t.Fatalf("expected exactly one appointment row, got %d", f.appointments.count())
	}

	if _, err := f.svc.Book(ctx, "u-bob", 2, at); !errors.Is(err, domain.ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken once slot is assigned, got %v", err)
	}
}

func TestAppointmentService_AddCapacitySlot_Conflict(t *testing.T) {
	f := newLedgerFixture()
	f.clinics.seed(1, "Downtown")
	ctx := context.Background()
	at := mustTime("2024-02-01 10:00")

	if _, err := f.svc.AddCapacitySlot(ctx, 1, at); err != nil {
		t.Fatalf("first slot failed: %v", err)
	}
	if _, err := f.svc.AddCapacitySlot(ctx, 1, at); !errors.Is(err, domain.ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
	if _, err := f.svc.AddCapacitySlot(ctx, 42, at); !errors.Is(err, domain.ErrClinicNotFound) {
		t.Fatalf("expected ErrClinicNotFound, got %v", err)
	}
}

func TestAppointmentService_Book_ConcurrentSingleWinner(t *testing.T) {
	f := newLedgerFixture()
	f.clinics.seed(1, "Downtown")
	const n = 16
	for i := 0; i < n; i++ {
		id := string(rune('a' + i))
		f.users.seed("u-"+id, "user-"+id, domain.RolePatient)
	}
	at := mustTime("2024-01-10 09:00")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		taken   int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			_, err := f.svc.Book(context.Background(), uid, 1, at)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, domain.ErrSlotTaken):
				taken++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}("u-" + string(rune('a'+i)))
	}
	wg.Wait()

	if success != 1 || taken != n-1 {
		t.Fatalf("expected 1 success and %d conflicts, got %d and %d", n-1, success, taken)
	}
}

func TestAppointmentService_Cancel(t *testing.T) {
	f := newLedgerFixture()
	f.clinics.seed(1, "Downtown")
	f.users.seed("u-alice", "alice", domain.RolePatient)
	ctx := context.Background()

	if _, err := f.svc.Cancel(ctx, 404); !errors.Is(err, domain.ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
	if f.appointments.count() != 0 {
		t.Fatalf("expected ledger unchanged")
	}

	a, _ := f.svc.Book(ctx, "u-alice", 1, mustTime("2024-01-10 09:00"))
	if _, err := f.svc.Cancel(ctx, a.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	again, err := f.svc.Cancel(ctx, a.ID)
	if err != nil {
		t.Fatalf("re-cancel must be a no-op, got %v", err)
	}
	if again.Status != domain.StatusCanceled {
		t.Fatalf("expected canceled, got %s", again.Status)
	}
}

func TestAppointmentService_Reschedule(t *testing.T) {
	f := newLedgerFixture()
	f.clinics.seed(1, "Downtown")
	f.users.seed("u-alice", "alice", domain.RolePatient)
	f.users.seed("u-bob", "bob", domain.RolePatient)
	ctx := context.Background()
	nine := mustTime("2024-01-10 09:00")
	ten := mustTime("2024-01-10 10:00")
	eleven := mustTime("2024-01-10 11:00")

	alice, _ := f.svc.Book(ctx, "u-alice", 1, nine)
	if _, err := f.svc.Book(ctx, "u-bob", 1, ten); err != nil {
		t.Fatalf("bob booking failed: %v", err)
	}

	if _, err := f.svc.Reschedule(ctx, alice.ID, ten); !errors.Is(err, domain.ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
	stored, _ := f.svc.Get(ctx, alice.ID)
	if !stored.DateTime.Equal(nine) {
		t.Fatalf("expected date_time unchanged after conflict, got %v", stored.DateTime)
	}

	moved, err := f.svc.Reschedule(ctx, alice.ID, eleven)
	if err != nil {
		t.Fatalf("reschedule failed: %v", err)
	}
	if !moved.DateTime.Equal(eleven) || moved.Status != domain.StatusPending {
		t.Fatalf("unexpected appointment after reschedule: %+v", moved)
	}

	// Rescheduling onto its own current slot is allowed.
	if _, err := f.svc.Reschedule(ctx, alice.ID, eleven); err != nil {
		t.Fatalf("reschedule to same slot failed: %v", err)
	}

	if _, err := f.svc.Reschedule(ctx, 404, eleven); !errors.Is(err, domain.ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestAppointmentService_Reschedule_RevivesCanceled(t *testing.T) {
	f := newLedgerFixture()
	f.clinics.seed(1, "Downtown")
	f.users.seed("u-alice", "alice", domain.RolePatient)
	ctx := context.Background()

	a, _ := f.svc.Book(ctx, "u-alice", 1, mustTime("2024-01-10 09:00"))
	_, _ = f.svc.Cancel(ctx, a.ID)

	revived, err := f.svc.Reschedule(ctx, a.ID, mustTime("2024-01-11 09:00"))
	if err != nil {
		t.Fatalf("reschedule of canceled appointment failed: %v", err)
	}
	if revived.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", revived.Status)
	}
}

func TestAppointmentService_Confirm(t *testing.T) {
	f := newLedgerFixture()
	f.clinics.seed(1, "Downtown")
	f.users.seed("u-alice", "alice", domain.RolePatient)
	ctx := context.Background()

	a, _ := f.svc.Book(ctx, "u-alice", 1, mustTime("2024-01-10 09:00"))
	confirmed, err := f.svc.Confirm(ctx, a.ID)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if confirmed.Status != domain.StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", confirmed.Status)
	}
	if _, err := f.svc.Confirm(ctx, a.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on re-confirm, got %v", err)
	}

	slot, _ := f.svc.AddCapacitySlot(ctx, 1, mustTime("2024-01-10 12:00"))
	if _, err := f.svc.Confirm(ctx, slot.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected open slot confirm to fail, got %v", err)
	}
}

func TestAppointmentService_Remove(t *testing.T) {
	f := newLedgerFixture()
	f.clinics.seed(1, "Downtown")
	ctx := context.Background()

	if err := f.svc.Remove(ctx, 404); err != nil {
		t.Fatalf("remove of absent id must be a no-op, got %v", err)
	}

	slot, _ := f.svc.AddCapacitySlot(ctx, 1, mustTime("2024-01-10 12:00"))
	if err := f.svc.Remove(ctx, slot.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := f.svc.Get(ctx, slot.ID); !errors.Is(err, domain.ErrAppointmentNotFound) {
		t.Fatalf("expected hard delete, got %v", err)
	}
}

func TestAppointmentService_ListForUser_UnknownClinicFallback(t *testing.T) {
	f := newLedgerFixture()
	f.clinics.seed(1, "Downtown")
	f.clinics.seed(2, "Uptown")
	f.users.seed("u-alice", "alice", domain.RolePatient)
	ctx := context.Background()

	_, _ = f.svc.Book(ctx, "u-alice", 1, mustTime("2024-01-10 09:00"))
	_, _ = f.svc.Book(ctx, "u-alice", 2, mustTime("2024-01-10 09:00"))
	delete(f.clinics.clinics, 2)

	views, err := f.svc.ListForUser(ctx, "u-alice")
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 appointments, got %d", len(views))
	}
	if views[0].ClinicName != "Downtown" || views[1].ClinicName != domain.UnknownClinicName {
		t.Fatalf("unexpected clinic names: %q, %q", views[0].ClinicName, views[1].ClinicName)
	}
}

func TestAppointmentService_Owned(t *testing.T) {
	f := newLedgerFixture()
	f.clinics.seed(1, "Downtown")
	f.users.seed("u-alice", "alice", domain.RolePatient)
	ctx := context.Background()

	a, _ := f.svc.Book(ctx, "u-alice", 1, mustTime("2024-01-10 09:00"))
	if _, err := f.svc.Owned(ctx, "u-alice", a.ID); err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
	if _, err := f.svc.Owned(ctx, "u-bob", a.ID); !errors.Is(err, domain.ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound for non-owner, got %v", err)
	}
}

func TestAppointmentService_SideEffects(t *testing.T) {
	f := newLedgerFixture()
	f.clinics.seed(1, "Downtown")
	f.users.seed("u-alice", "alice", domain.RolePatient)
	ctx := ports.WithActor(context.Background(), "alice")

	a, _ := f.svc.Book(ctx, "u-alice", 1, mustTime("2024-01-10 09:00"))
	_, _ = f.svc.Cancel(ctx, a.ID)

	notes, _ := f.notifier.List(ctx, "alice")
	if len(notes) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notes))
	}
	events, _ := f.events.ListByAppointment(ctx, a.ID)
	if len(events) != 2 || events[0].Action != domain.ActionBooked || events[1].Action != domain.ActionCanceled {
		t.Fatalf("unexpected audit trail: %+v", events)
	}
	if events[0].Actor != "alice" {
		t.Fatalf("expected actor alice, got %s", events[0].Actor)
	}
}

func TestAppointmentService_AuditFailureIsNotFatal(t *testing.T) {
	f := newLedgerFixture()
	f.clinics.seed(1, "Downtown")
	f.users.seed("u-alice", "alice", domain.RolePatient)
	f.events.insertErr = errors.New("mongo down")

	if _, err := f.svc.Book(context.Background(), "u-alice", 1, mustTime("2024-01-10 09:00")); err != nil {
		t.Fatalf("expected booking to succeed despite audit failure, got %v", err)
	}
}
