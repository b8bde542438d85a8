package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicreserve/reservation-system/internal/core/domain"
)

type recordingReporter struct {
	errs []error
}

func (r *recordingReporter) CaptureException(err error, tags map[string]string) {
	r.errs = append(r.errs, err)
}

func TestHTTPErrorHandler_DomainMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrDuplicateUsername, http.StatusConflict},
		{fmt.Errorf("book: %w", domain.ErrSlotTaken), http.StatusConflict},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrUserNotFound, http.StatusNotFound},
		{domain.ErrClinicNotFound, http.StatusNotFound},
		{domain.ErrAppointmentNotFound, http.StatusNotFound},
		{domain.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("confirm: %w", domain.ErrInvalidTransition), http.StatusUnprocessableEntity},
		{fmt.Errorf("register: %w", domain.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("feed: %w", domain.ErrRemoteServiceUnavailable), http.StatusServiceUnavailable},
		{echo.NewHTTPError(http.StatusTooManyRequests, "too many requests"), http.StatusTooManyRequests},
	}

	for _, tc := range cases {
		e := echo.New()
		reporter := &recordingReporter{}
		handler := NewHTTPErrorHandler(zerolog.Nop(), reporter)

		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		handler(tc.err, c)

		if rec.Code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
		if len(reporter.errs) != 0 {
			t.Fatalf("%v: known errors must not be reported", tc.err)
		}
	}
}

func TestHTTPErrorHandler_UnexpectedErrorIsHiddenAndReported(t *testing.T) {
	e := echo.New()
	reporter := &recordingReporter{}
	handler := NewHTTPErrorHandler(zerolog.Nop(), reporter)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/appointments", nil), rec)
	handler(errors.New("connection reset by peer"), c)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Error != "internal server error" {
		t.Fatalf("expected generic message, got %q", body.Error)
	}
	if len(reporter.errs) != 1 {
		t.Fatalf("expected 1 reported error, got %d", len(reporter.errs))
	}
}

func TestHTTPErrorHandler_RemoteUnavailableBody(t *testing.T) {
	e := echo.New()
	handler := NewHTTPErrorHandler(zerolog.Nop(), nil)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/appointments/available", nil), rec)
	handler(domain.ErrRemoteServiceUnavailable, c)

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Error != "unavailable" {
		t.Fatalf("expected \"unavailable\", got %q", body.Error)
	}
}
