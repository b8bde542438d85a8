package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicreserve/reservation-system/internal/core/domain"
	"github.com/clinicreserve/reservation-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu    sync.Mutex
	byID  map[string]*domain.User
	staff map[string]int64
	// readDelay widens the gap between a read and the write that follows.
	readDelay time.Duration
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User), staff: make(map[string]int64)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == user.Username {
			return domain.ErrDuplicateUsername
		}
	}
	r.byID[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	defer time.Sleep(r.readDelay)
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	defer time.Sleep(r.readDelay)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id string, ch ports.UserChanges, at time.Time) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if ch.Email != nil {
		u.Email = *ch.Email
	}
	if ch.PasswordHash != nil {
		u.PasswordHash = *ch.PasswordHash
	}
	if ch.UseOTP != nil {
		u.UseOTP = *ch.UseOTP
	}
	u.UpdatedAt = at
	return cloneUser(u), nil
}

func (r *stubUserRepo) SetOTP(_ context.Context, id, code string, expiry, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.OTP, u.OTPExpiry, u.UpdatedAt = &code, &expiry, at
	return nil
}

func (r *stubUserRepo) ConsumeOTP(_ context.Context, id, code string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok || u.OTP == nil || u.OTPExpiry == nil || *u.OTP != code || !at.Before(*u.OTPExpiry) {
		return domain.ErrInvalidCredentials
	}
	u.OTP, u.OTPExpiry, u.UpdatedAt = nil, nil, at
	return nil
}

func (r *stubUserRepo) StaffClinic(_ context.Context, userID string) (*int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.staff[userID]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

func (r *stubUserRepo) AssignStaffClinic(_ context.Context, userID string, clinicID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staff[userID] = clinicID
	return nil
}

// seed stores a user directly, bypassing hashing.
func (r *stubUserRepo) seed(id, username string, role domain.Role) *domain.User {
	u := &domain.User{ID: id, Username: username, Role: role}
	r.byID[id] = u
	return cloneUser(u)
}

type stubClinicRepo struct {
	mu      sync.Mutex
	clinics map[int64]*domain.Clinic
	nextID  int64
}

func newStubClinicRepo() *stubClinicRepo {
	return &stubClinicRepo{clinics: make(map[int64]*domain.Clinic)}
}

func cloneClinic(c *domain.Clinic) *domain.Clinic {
	clone := *c
	clone.Services = append([]string(nil), c.Services...)
	clone.Availability = make(map[string]bool, len(c.Availability))
	for k, v := range c.Availability {
		clone.Availability[k] = v
	}
	return &clone
}

func (r *stubClinicRepo) Create(_ context.Context, c *domain.Clinic) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	r.clinics[c.ID] = cloneClinic(c)
	return nil
}

func (r *stubClinicRepo) FindByID(_ context.Context, id int64) (*domain.Clinic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clinics[id]
	if !ok {
		return nil, domain.ErrClinicNotFound
	}
	return cloneClinic(c), nil
}

func (r *stubClinicRepo) List(_ context.Context) ([]*domain.Clinic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Clinic, 0, len(r.clinics))
	for _, c := range r.clinics {
		out = append(out, cloneClinic(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubClinicRepo) UpdateInfo(_ context.Context, id int64, address, phone *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clinics[id]
	if !ok {
		return domain.ErrClinicNotFound
	}
	if address != nil {
		c.Address = *address
	}
	if phone != nil {
		c.Phone = *phone
	}
	return nil
}

func (r *stubClinicRepo) SetAvailability(_ context.Context, id int64, date time.Time, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clinics[id]
	if !ok {
		return domain.ErrClinicNotFound
	}
	c.Availability[domain.DateKey(date)] = available
	return nil
}

// seed stores a clinic with a fixed id.
func (r *stubClinicRepo) seed(id int64, name string) {
	r.clinics[id] = &domain.Clinic{ID: id, Name: name, Availability: map[string]bool{}}
	if id > r.nextID {
		r.nextID = id
	}
}

type stubAppointmentRepo struct {
	mu     sync.Mutex
	byID   map[int64]*domain.Appointment
	nextID int64
	// clinics is consulted for the list view join; may be nil.
	clinics *stubClinicRepo
}

func newStubAppointmentRepo(clinics *stubClinicRepo) *stubAppointmentRepo {
	return &stubAppointmentRepo{byID: make(map[int64]*domain.Appointment), clinics: clinics}
}

func cloneAppointment(a *domain.Appointment) *domain.Appointment {
	clone := *a
	if a.UserID != nil {
		uid := *a.UserID
		clone.UserID = &uid
	}
	return &clone
}

func (r *stubAppointmentRepo) FindByID(_ context.Context, id int64) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAppointmentNotFound
	}
	return cloneAppointment(a), nil
}

func (r *stubAppointmentRepo) FindActiveAt(_ context.Context, clinicID int64, at time.Time, excludeID int64) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.ID == excludeID || a.ClinicID != clinicID || !a.Active() {
			continue
		}
		if a.DateTime.Equal(at) {
			return cloneAppointment(a), nil
		}
	}
	return nil, nil
}

// Create mirrors the partial unique index of the real schema.
func (r *stubAppointmentRepo) Create(_ context.Context, a *domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.Active() {
		for _, other := range r.byID {
			if other.ClinicID == a.ClinicID && other.Active() && other.DateTime.Equal(a.DateTime) {
				return domain.ErrSlotTaken
			}
		}
	}
	r.nextID++
	a.ID = r.nextID
	r.byID[a.ID] = cloneAppointment(a)
	return nil
}

func (r *stubAppointmentRepo) AssignUser(_ context.Context, id int64, userID string, status domain.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAppointmentNotFound
	}
	a.UserID = &userID
	a.Status = status
	return nil
}

func (r *stubAppointmentRepo) UpdateStatus(_ context.Context, id int64, status domain.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAppointmentNotFound
	}
	a.Status = status
	return nil
}

func (r *stubAppointmentRepo) UpdateDateTime(_ context.Context, id int64, at time.Time, status domain.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAppointmentNotFound
	}
	a.DateTime = at
	a.Status = status
	return nil
}

func (r *stubAppointmentRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *stubAppointmentRepo) ListByUser(ctx context.Context, userID string) ([]domain.AppointmentView, error) {
	r.mu.Lock()
	var mine []*domain.Appointment
	for _, a := range r.byID {
		if a.BelongsTo(userID) {
			mine = append(mine, cloneAppointment(a))
		}
	}
	r.mu.Unlock()

	sort.Slice(mine, func(i, j int) bool { return mine[i].ID < mine[j].ID })
	out := make([]domain.AppointmentView, 0, len(mine))
	for _, a := range mine {
		name := domain.UnknownClinicName
		if r.clinics != nil {
			if c, err := r.clinics.FindByID(ctx, a.ClinicID); err == nil {
				name = c.Name
			}
		}
		out = append(out, domain.AppointmentView{Appointment: *a, ClinicName: name})
	}
	return out, nil
}

func (r *stubAppointmentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// stubTx serialises callbacks per clinic, like the advisory lock.
type stubTx struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newStubTx() *stubTx {
	return &stubTx{locks: make(map[int64]*sync.Mutex)}
}

func (t *stubTx) WithinClinicLock(ctx context.Context, clinicID int64, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	l, ok := t.locks[clinicID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[clinicID] = l
	}
	t.mu.Unlock()

	l.Lock()
	defer l.Unlock()
	return fn(ctx)
}

type stubNotificationRepo struct {
	mu    sync.Mutex
	users *stubUserRepo
	log   []*domain.Notification
}

func (r *stubNotificationRepo) Append(ctx context.Context, n *domain.Notification) error {
	if r.users != nil {
		if _, err := r.users.FindByUsername(ctx, n.Username); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *n
	r.log = append(r.log, &clone)
	return nil
}

func (r *stubNotificationRepo) ListByUsername(_ context.Context, username string) ([]*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Notification
	for i := len(r.log) - 1; i >= 0; i-- {
		if r.log[i].Username == username {
			clone := *r.log[i]
			out = append(out, &clone)
		}
	}
	return out, nil
}

type stubCourier struct {
	mu   sync.Mutex
	sent []ports.Message
}

func (c *stubCourier) Deliver(msg ports.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
}

func (c *stubCourier) messages() []ports.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ports.Message(nil), c.sent...)
}

type stubEventRepo struct {
	mu        sync.Mutex
	events    []*domain.AppointmentEvent
	insertErr error
}

func (r *stubEventRepo) InsertEvent(_ context.Context, e *domain.AppointmentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	clone := *e
	r.events = append(r.events, &clone)
	return nil
}

func (r *stubEventRepo) ListByAppointment(_ context.Context, id int64) ([]*domain.AppointmentEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AppointmentEvent
	for _, e := range r.events {
		if e.AppointmentID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

type stubFeed struct {
	payload  json.RawMessage
	err      error
	calls    int
	adjusted []ports.CapacityAdjustment
}

func (f *stubFeed) FetchAvailable(context.Context) (json.RawMessage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

func (f *stubFeed) AdjustCapacity(_ context.Context, adj ports.CapacityAdjustment) (json.RawMessage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	f.adjusted = append(f.adjusted, adj)
	return json.RawMessage(`{"ok":true}`), nil
}

type stubFeedCache struct {
	payload json.RawMessage
	ttl     time.Duration
}

func (c *stubFeedCache) Get(context.Context) (json.RawMessage, bool, error) {
	if c.payload == nil {
		return nil, false, nil
	}
	return c.payload, true, nil
}

func (c *stubFeedCache) Set(_ context.Context, payload json.RawMessage, ttl time.Duration) error {
	c.payload = payload
	c.ttl = ttl
	return nil
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type ledgerFixture struct {
	users         *stubUserRepo
	clinics       *stubClinicRepo
	appointments  *stubAppointmentRepo
	notifications *stubNotificationRepo
	courier       *stubCourier
	events        *stubEventRepo
	feed          *stubFeed
	svc           *AppointmentService
	notifier      *NotificationService
	admin         *AdminService
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		users:   newStubUserRepo(),
		clinics: newStubClinicRepo(),
		courier: &stubCourier{},
		events:  &stubEventRepo{},
		feed:    &stubFeed{},
	}
	f.appointments = newStubAppointmentRepo(f.clinics)
	f.notifications = &stubNotificationRepo{users: f.users}
	log := zerolog.Nop()
	f.notifier = NewNotificationService(f.notifications, f.courier, log)
	f.svc = NewAppointmentService(f.appointments, f.clinics, f.users, newStubTx(), f.notifier, f.events, log)
	clinicSvc := NewClinicService(f.clinics, log)
	feedSvc := NewFeedService(f.feed, nil, time.Minute, log)
	f.admin = NewAdminService(f.users, clinicSvc, f.svc, f.notifier, f.events, feedSvc, log)
	return f
}

func mustTime(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}
