package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinicreserve/reservation-system/internal/api/middleware"
	"github.com/clinicreserve/reservation-system/internal/core/domain"
	"github.com/clinicreserve/reservation-system/internal/core/ports"
)

// newContext builds an echo context with the validator wired and, when
// userID is non-empty, the claims the Auth middleware would set.
func newContext(method, target, body, userID, role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set(middleware.CtxUserID, userID)
		c.Set(middleware.CtxUsername, "user-"+userID)
		c.Set(middleware.CtxRole, role)
	}
	return c, rec
}

type stubIdentityService struct {
	registerFn     func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	authenticateFn func(ctx context.Context, username, credential string) (*ports.AuthResult, error)
	requestOTPFn   func(ctx context.Context, username string) error
	updateFn       func(ctx context.Context, userID string, upd ports.ProfileUpdate) (*domain.User, error)
	profileFn      func(ctx context.Context, userID string) (*domain.User, error)
}

func (s *stubIdentityService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubIdentityService) Authenticate(ctx context.Context, username, credential string) (*ports.AuthResult, error) {
	return s.authenticateFn(ctx, username, credential)
}

func (s *stubIdentityService) IssueOTP(ctx context.Context, userID string) (*ports.OTPGrant, error) {
	return &ports.OTPGrant{}, nil
}

func (s *stubIdentityService) RequestOTP(ctx context.Context, username string) error {
	return s.requestOTPFn(ctx, username)
}

func (s *stubIdentityService) UpdateProfile(ctx context.Context, userID string, upd ports.ProfileUpdate) (*domain.User, error) {
	return s.updateFn(ctx, userID, upd)
}

func (s *stubIdentityService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.profileFn(ctx, userID)
}

type stubClinicService struct {
	clinics map[int64]*domain.Clinic
}

func (s *stubClinicService) CreateClinic(ctx context.Context, in ports.CreateClinicInput) (*domain.Clinic, error) {
	return nil, nil
}

func (s *stubClinicService) UpdateInfo(ctx context.Context, clinicID int64, upd ports.ClinicInfoUpdate) (*domain.Clinic, error) {
	return nil, nil
}

func (s *stubClinicService) SetAvailability(ctx context.Context, clinicID int64, date time.Time, available bool) error {
	return nil
}

func (s *stubClinicService) Get(ctx context.Context, clinicID int64) (*domain.Clinic, error) {
	c, ok := s.clinics[clinicID]
	if !ok {
		return nil, domain.ErrClinicNotFound
	}
	return c, nil
}

func (s *stubClinicService) List(ctx context.Context) ([]*domain.Clinic, error) {
	out := make([]*domain.Clinic, 0, len(s.clinics))
	for _, c := range s.clinics {
		out = append(out, c)
	}
	return out, nil
}

type stubAppointmentService struct {
	bookFn       func(ctx context.Context, userID string, clinicID int64, at time.Time) (*domain.Appointment, error)
	cancelFn     func(ctx context.Context, id int64) (*domain.Appointment, error)
	rescheduleFn func(ctx context.Context, id int64, at time.Time) (*domain.Appointment, error)
	ownedFn      func(ctx context.Context, userID string, id int64) (*domain.Appointment, error)
	listFn       func(ctx context.Context, userID string) ([]domain.AppointmentView, error)
}

func (s *stubAppointmentService) Book(ctx context.Context, userID string, clinicID int64, at time.Time) (*domain.Appointment, error) {
	return s.bookFn(ctx, userID, clinicID, at)
}

func (s *stubAppointmentService) Cancel(ctx context.Context, id int64) (*domain.Appointment, error) {
	return s.cancelFn(ctx, id)
}

func (s *stubAppointmentService) Reschedule(ctx context.Context, id int64, at time.Time) (*domain.Appointment, error) {
	return s.rescheduleFn(ctx, id, at)
}

func (s *stubAppointmentService) Confirm(ctx context.Context, id int64) (*domain.Appointment, error) {
	return nil, nil
}

func (s *stubAppointmentService) Get(ctx context.Context, id int64) (*domain.Appointment, error) {
	return nil, domain.ErrAppointmentNotFound
}

func (s *stubAppointmentService) Owned(ctx context.Context, userID string, id int64) (*domain.Appointment, error) {
	return s.ownedFn(ctx, userID, id)
}

func (s *stubAppointmentService) ListForUser(ctx context.Context, userID string) ([]domain.AppointmentView, error) {
	return s.listFn(ctx, userID)
}

func (s *stubAppointmentService) AddCapacitySlot(ctx context.Context, clinicID int64, at time.Time) (*domain.Appointment, error) {
	return nil, nil
}

func (s *stubAppointmentService) Remove(ctx context.Context, id int64) error {
	return nil
}

type stubFeedService struct {
	payload json.RawMessage
	err     error
}

func (s *stubFeedService) Available(ctx context.Context) (json.RawMessage, error) {
	return s.payload, s.err
}

func (s *stubFeedService) AdjustCapacity(ctx context.Context, adj ports.CapacityAdjustment) (json.RawMessage, error) {
	return s.payload, s.err
}

type stubNotificationService struct {
	items map[string][]*domain.Notification
}

func (s *stubNotificationService) Send(ctx context.Context, username, message string) (*domain.Notification, error) {
	return nil, nil
}

func (s *stubNotificationService) SendBulk(ctx context.Context, usernames []string, message string) ports.BulkResult {
	return ports.BulkResult{}
}

func (s *stubNotificationService) List(ctx context.Context, username string) ([]*domain.Notification, error) {
	return s.items[username], nil
}

// stubAdminService records the last actor and fails every call with err
// when set.
type stubAdminService struct {
	err       error
	lastActor string
	lastDate  time.Time
	lastAvail bool
	bulk      ports.BulkResult
	lastAdj   ports.CapacityAdjustment
	lastStaff string
}

func (s *stubAdminService) Context(ctx context.Context, actorID string) (*domain.AdminContext, error) {
	s.lastActor = actorID
	return &domain.AdminContext{UserID: actorID}, s.err
}

func (s *stubAdminService) CreateClinic(ctx context.Context, actorID string, in ports.CreateClinicInput) (*domain.Clinic, error) {
	s.lastActor = actorID
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Clinic{ID: 1, Name: in.Name, Services: in.Services}, nil
}

func (s *stubAdminService) UpdateClinicInfo(ctx context.Context, actorID string, clinicID int64, upd ports.ClinicInfoUpdate) (*domain.Clinic, error) {
	s.lastActor = actorID
	if s.err != nil {
		return nil, s.err
	}
	c := &domain.Clinic{ID: clinicID}
	if upd.Phone != nil {
		c.Phone = *upd.Phone
	}
	return c, nil
}

func (s *stubAdminService) SetAvailability(ctx context.Context, actorID string, clinicID int64, date time.Time, available bool) error {
	s.lastActor = actorID
	s.lastDate = date
	s.lastAvail = available
	return s.err
}

func (s *stubAdminService) AddCapacitySlot(ctx context.Context, actorID string, clinicID int64, at time.Time) (*domain.Appointment, error) {
	s.lastActor = actorID
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Appointment{ID: 5, ClinicID: clinicID, DateTime: at, Status: domain.StatusPending}, nil
}

func (s *stubAdminService) RemoveAppointment(ctx context.Context, actorID string, appointmentID int64) error {
	s.lastActor = actorID
	return s.err
}

func (s *stubAdminService) ConfirmAppointment(ctx context.Context, actorID string, appointmentID int64) (*domain.Appointment, error) {
	s.lastActor = actorID
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Appointment{ID: appointmentID, Status: domain.StatusConfirmed}, nil
}

func (s *stubAdminService) AppointmentHistory(ctx context.Context, actorID string, appointmentID int64) ([]*domain.AppointmentEvent, error) {
	s.lastActor = actorID
	if s.err != nil {
		return nil, s.err
	}
	return []*domain.AppointmentEvent{{AppointmentID: appointmentID, Action: domain.ActionBooked}}, nil
}

func (s *stubAdminService) Broadcast(ctx context.Context, actorID string, usernames []string, message string) (ports.BulkResult, error) {
	s.lastActor = actorID
	return s.bulk, s.err
}

func (s *stubAdminService) AssignClinic(ctx context.Context, actorID, staffUserID string, clinicID int64) error {
	s.lastActor = actorID
	s.lastStaff = staffUserID
	return s.err
}

func (s *stubAdminService) AdjustCapacity(ctx context.Context, actorID string, adj ports.CapacityAdjustment) (json.RawMessage, error) {
	s.lastActor = actorID
	s.lastAdj = adj
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(`{"ok":true}`), nil
}
