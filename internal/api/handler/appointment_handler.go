package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicreserve/reservation-system/internal/core/ports"
)

// AppointmentHandler handles patient-facing ledger requests. Cancel and
// reschedule only reach appointments owned by the caller.
type AppointmentHandler struct {
	appointments ports.AppointmentService
	feed         ports.FeedService
}

func NewAppointmentHandler(appointments ports.AppointmentService, feed ports.FeedService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments, feed: feed}
}

// List handles GET /appointments.
//
// @Summary      List my appointments
// @Tags         appointments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.AppointmentView
// @Failure      401  {object}  errorResponse
// @Router       /appointments [get]
func (h *AppointmentHandler) List(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}

	views, err := h.appointments.ListForUser(c.Request().Context(), cl.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

// Book handles POST /appointments.
//
// @Summary      Book an appointment
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bookRequest  true  "Clinic and time"
// @Success      201   {object}  domain.Appointment
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /appointments [post]
func (h *AppointmentHandler) Book(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req bookRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	appt, err := h.appointments.Book(c.Request().Context(), cl.UserID, req.ClinicID, req.DateTime)
	observeLedger("book", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, appt)
}

// Cancel handles POST /appointments/:id/cancel.
//
// @Summary      Cancel one of my appointments
// @Tags         appointments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Appointment ID"
// @Success      200  {object}  domain.Appointment
// @Failure      404  {object}  errorResponse
// @Router       /appointments/{id}/cancel [post]
func (h *AppointmentHandler) Cancel(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.appointments.Owned(ctx, cl.UserID, id); err != nil {
		return err
	}

	appt, err := h.appointments.Cancel(ctx, id)
	observeLedger("cancel", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, appt)
}

// Reschedule handles POST /appointments/:id/reschedule.
//
// @Summary      Move one of my appointments
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Appointment ID"
// @Param        body  body      rescheduleRequest  true  "New time"
// @Success      200   {object}  domain.Appointment
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /appointments/{id}/reschedule [post]
func (h *AppointmentHandler) Reschedule(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req rescheduleRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.appointments.Owned(ctx, cl.UserID, id); err != nil {
		return err
	}

	appt, err := h.appointments.Reschedule(ctx, id, req.DateTime)
	observeLedger("reschedule", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, appt)
}

// Available handles GET /appointments/available, relaying the remote feed.
//
// @Summary      Available appointments from the remote feed
// @Tags         appointments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   object
// @Failure      503  {object}  errorResponse
// @Router       /appointments/available [get]
func (h *AppointmentHandler) Available(c echo.Context) error {
	payload, err := h.feed.Available(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, payload)
}
