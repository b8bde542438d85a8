// Package console implements the interactive numbered-menu front end. It
// talks to the same core services as the HTTP API and keeps the signed-in
// user in memory for the lifetime of the session.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicreserve/reservation-system/internal/core/domain"
	"github.com/clinicreserve/reservation-system/internal/core/ports"
)

// InputLayout is the date-time format typed by the user. Times are read as UTC.
const InputLayout = "2006-01-02 15:04"

// Deps holds the services the console drives.
type Deps struct {
	Identity      ports.IdentityService
	Clinics       ports.ClinicService
	Appointments  ports.AppointmentService
	Notifications ports.NotificationService
	Log           zerolog.Logger
}

type command struct {
	label     string
	needsUser bool
	run       func(ctx context.Context) error
}

// Console is one interactive session.
type Console struct {
	in      *bufio.Scanner
	out     io.Writer
	deps    Deps
	current *domain.User
	menu    []command
}

func New(in io.Reader, out io.Writer, deps Deps) *Console {
	c := &Console{in: bufio.NewScanner(in), out: out, deps: deps}
	c.menu = []command{
		{label: "Sign Up", run: c.signUp},
		{label: "Log In", run: c.logIn},
		{label: "View Profile", needsUser: true, run: c.viewProfile},
		{label: "View Appointments", needsUser: true, run: c.viewAppointments},
		{label: "Book Appointment", needsUser: true, run: c.book},
		{label: "Cancel Appointment", needsUser: true, run: c.cancel},
		{label: "Reschedule Appointment", needsUser: true, run: c.reschedule},
		{label: "View Notifications", needsUser: true, run: c.viewNotifications},
		{label: "Update Profile", needsUser: true, run: c.updateProfile},
		{label: "List Clinics", run: c.listClinics},
		{label: "Logout", run: c.logout},
	}
	return c
}

var errQuit = errors.New("quit")

// Run loops over the menu until the user quits, input ends or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	c.println("Welcome to the Clinic Reservation System!")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.printMenu()
		choice, ok := c.prompt("Enter the number of the command you want to execute: ")
		if !ok {
			return c.in.Err()
		}
		if err := c.dispatch(ctx, choice); err != nil {
			if errors.Is(err, errQuit) {
				c.println("Goodbye.")
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			c.println(c.describe(err))
		}
	}
}

func (c *Console) printMenu() {
	c.println("")
	c.println("Available commands:")
	for i, cmd := range c.menu {
		c.printf("%d. %s\n", i+1, cmd.label)
	}
	c.println("0. Quit")
}

func (c *Console) dispatch(ctx context.Context, choice string) error {
	if choice == "0" {
		return errQuit
	}
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(c.menu) {
		c.println("Invalid command. Please enter a valid command number.")
		return nil
	}
	cmd := c.menu[n-1]
	if cmd.needsUser && c.current == nil {
		c.println("Please log in first.")
		return nil
	}
	if c.current != nil {
		ctx = ports.WithActor(ctx, c.current.Username)
	}
	return cmd.run(ctx)
}

// describe turns an error into the line shown to the user.
func (c *Console) describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateUsername):
		return "Username already exists."
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.Is(err, domain.ErrSlotTaken):
		return "This time slot is already booked."
	case errors.Is(err, domain.ErrAppointmentNotFound):
		return "Appointment not found."
	case errors.Is(err, domain.ErrClinicNotFound):
		return "Clinic not found."
	case errors.Is(err, domain.ErrUserNotFound):
		return "User not found."
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidTransition):
		return "Invalid input: " + err.Error()
	case errors.Is(err, domain.ErrRemoteServiceUnavailable):
		return "The remote service is unavailable. Try again later."
	}
	c.deps.Log.Error().Err(err).Msg("console command failed")
	return "Something went wrong. Please try again."
}

func (c *Console) signUp(ctx context.Context) error {
	username, err := c.ask("Enter your username: ")
	if err != nil {
		return err
	}
	email, err := c.ask("Enter your email: ")
	if err != nil {
		return err
	}
	password, err := c.ask("Enter your password: ")
	if err != nil {
		return err
	}
	role, err := c.ask("Role (patient/staff) [patient]: ")
	if err != nil {
		return err
	}
	useOTP, err := c.askYesNo("Log in with one-time codes? (y/N): ")
	if err != nil {
		return err
	}

	user, err := c.deps.Identity.Register(ctx, ports.RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
		Role:     domain.Role(strings.ToLower(role)),
		UseOTP:   useOTP != nil && *useOTP,
	})
	if err != nil {
		return err
	}
	c.printf("User %s signed up successfully.\n", user.Username)
	return nil
}

func (c *Console) logIn(ctx context.Context) error {
	username, err := c.ask("Enter your username: ")
	if err != nil {
		return err
	}
	credential, err := c.ask("Enter your password (leave empty to receive a one-time code): ")
	if err != nil {
		return err
	}
	if credential == "" {
		if err := c.deps.Identity.RequestOTP(ctx, username); err != nil {
			return err
		}
		c.println("If the account exists, a one-time code has been sent.")
		if credential, err = c.ask("Enter the one-time code: "); err != nil {
			return err
		}
	}

	res, err := c.deps.Identity.Authenticate(ctx, username, credential)
	if err != nil {
		return err
	}
	c.current = res.User
	c.printf("Welcome back, %s!\n", res.User.Username)
	return nil
}

func (c *Console) viewProfile(ctx context.Context) error {
	user, err := c.deps.Identity.Profile(ctx, c.current.ID)
	if err != nil {
		return err
	}
	c.current = user
	c.println("User Profile:")
	c.printf("  id:       %s\n", user.ID)
	c.printf("  username: %s\n", user.Username)
	c.printf("  email:    %s\n", user.Email)
	c.printf("  role:     %s\n", user.Role)
	c.printf("  use otp:  %t\n", user.UseOTP)
	return nil
}

func (c *Console) viewAppointments(ctx context.Context) error {
	views, err := c.deps.Appointments.ListForUser(ctx, c.current.ID)
	if err != nil {
		return err
	}
	c.printf("Appointments for %s:\n", c.current.Username)
	if len(views) == 0 {
		c.println("No appointments found.")
		return nil
	}
	for _, v := range views {
		c.printf("- Appointment %d at %s on %s with status %s.\n",
			v.ID, v.ClinicName, v.DateTime.Format(InputLayout), v.Status)
	}
	return nil
}

func (c *Console) book(ctx context.Context) error {
	at, err := c.askTime("Enter the date and time for the appointment (YYYY-MM-DD HH:MM): ")
	if err != nil {
		return err
	}
	clinicID, err := c.askID("Enter the clinic ID for the appointment: ")
	if err != nil {
		return err
	}

	appt, err := c.deps.Appointments.Book(ctx, c.current.ID, clinicID, at)
	if err != nil {
		return err
	}
	c.printf("Appointment %d registered successfully for %s.\n", appt.ID, appt.DateTime.Format(InputLayout))
	return nil
}

func (c *Console) cancel(ctx context.Context) error {
	id, err := c.askID("Enter the appointment ID to cancel: ")
	if err != nil {
		return err
	}
	if _, err := c.deps.Appointments.Owned(ctx, c.current.ID, id); err != nil {
		return err
	}
	if _, err := c.deps.Appointments.Cancel(ctx, id); err != nil {
		return err
	}
	c.printf("Appointment %d has been canceled.\n", id)
	return nil
}

func (c *Console) reschedule(ctx context.Context) error {
	id, err := c.askID("Enter the appointment ID to reschedule: ")
	if err != nil {
		return err
	}
	at, err := c.askTime("Enter the new date and time (YYYY-MM-DD HH:MM): ")
	if err != nil {
		return err
	}
	if _, err := c.deps.Appointments.Owned(ctx, c.current.ID, id); err != nil {
		return err
	}
	appt, err := c.deps.Appointments.Reschedule(ctx, id, at)
	if err != nil {
		return err
	}
	c.printf("Appointment %d rescheduled to %s.\n", appt.ID, appt.DateTime.Format(InputLayout))
	return nil
}

func (c *Console) viewNotifications(ctx context.Context) error {
	items, err := c.deps.Notifications.List(ctx, c.current.Username)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		c.println("No notifications.")
		return nil
	}
	for _, n := range items {
		c.printf("[%s] %s\n", n.CreatedAt.Format(InputLayout), n.Message)
	}
	return nil
}

func (c *Console) updateProfile(ctx context.Context) error {
	var upd ports.ProfileUpdate
	email, err := c.ask("Enter your new email (leave empty to keep current): ")
	if err != nil {
		return err
	}
	if email != "" {
		upd.Email = &email
	}
	password, err := c.ask("Enter your new password (leave empty to keep current): ")
	if err != nil {
		return err
	}
	if password != "" {
		upd.Password = &password
	}
	if upd.UseOTP, err = c.askYesNo("Log in with one-time codes? (y/n, empty to keep): "); err != nil {
		return err
	}
	if upd.Empty() {
		c.println("Nothing to update.")
		return nil
	}

	user, err := c.deps.Identity.UpdateProfile(ctx, c.current.ID, upd)
	if err != nil {
		return err
	}
	c.current = user
	c.println("Profile updated successfully.")
	return nil
}

func (c *Console) listClinics(ctx context.Context) error {
	clinics, err := c.deps.Clinics.List(ctx)
	if err != nil {
		return err
	}
	if len(clinics) == 0 {
		c.println("No clinics registered.")
		return nil
	}
	for _, cl := range clinics {
		c.printf("%d. %s (%s) services: %s\n", cl.ID, cl.Name, cl.Address, strings.Join(cl.Services, ", "))
	}
	return nil
}

func (c *Console) logout(context.Context) error {
	if c.current == nil {
		c.println("You are not logged in.")
		return nil
	}
	c.println("Logging out.")
	c.current = nil
	return nil
}

// --- input helpers ---

func (c *Console) prompt(label string) (string, bool) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

// ask is prompt that reports end of input as io.EOF.
func (c *Console) ask(label string) (string, error) {
	s, ok := c.prompt(label)
	if !ok {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s, nil
}

func (c *Console) askID(label string) (int64, error) {
	s, err := c.ask(label)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%q is not a valid id: %w", s, domain.ErrInvalidInput)
	}
	return id, nil
}

func (c *Console) askTime(label string) (time.Time, error) {
	s, err := c.ask(label)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(InputLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q does not match YYYY-MM-DD HH:MM: %w", s, domain.ErrInvalidInput)
	}
	return t, nil
}

// askYesNo returns nil for an empty answer.
func (c *Console) askYesNo(label string) (*bool, error) {
	s, err := c.ask(label)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(s) {
	case "":
		return nil, nil
	case "y", "yes":
		v := true
		return &v, nil
	case "n", "no":
		v := false
		return &v, nil
	}
	return nil, fmt.Errorf("answer y or n: %w", domain.ErrInvalidInput)
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
