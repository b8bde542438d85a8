package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinicreserve/reservation-system/internal/core/domain"
	"github.com/clinicreserve/reservation-system/internal/core/ports"
)

// AdminHandler exposes staff operations. The routes sit behind RBAC; the
// service still resolves the caller and enforces clinic scoping.
type AdminHandler struct {
	admin ports.AdminService
}

func NewAdminHandler(admin ports.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// CreateClinic handles POST /admin/clinics.
//
// @Summary      Create a clinic
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createClinicRequest  true  "Clinic"
// @Success      201   {object}  domain.Clinic
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /admin/clinics [post]
func (h *AdminHandler) CreateClinic(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}
	var req createClinicRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	clinic, err := h.admin.CreateClinic(c.Request().Context(), cl.UserID, ports.CreateClinicInput{
		Name:     req.Name,
		Address:  req.Address,
		Phone:    req.Phone,
		Services: req.Services,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, clinic)
}

// UpdateClinic handles PATCH /admin/clinics/:id.
//
// @Summary      Update clinic contact details
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                  true  "Clinic ID"
// @Param        body  body      updateClinicRequest  true  "Fields to change"
// @Success      200   {object}  domain.Clinic
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /admin/clinics/{id} [patch]
func (h *AdminHandler) UpdateClinic(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req updateClinicRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	clinic, err := h.admin.UpdateClinicInfo(c.Request().Context(), cl.UserID, id, ports.ClinicInfoUpdate{
		Address: req.Address,
		Phone:   req.Phone,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clinic)
}

// SetAvailability handles PUT /admin/clinics/:id/availability.
//
// @Summary      Mark a date available or unavailable
// @Tags         admin
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  int                  true  "Clinic ID"
// @Param        body  body  availabilityRequest  true  "Date (YYYY-MM-DD) and flag"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/clinics/{id}/availability [put]
func (h *AdminHandler) SetAvailability(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req availabilityRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	if req.Available == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "available is required")
	}
	date, err := time.Parse(domain.DateLayout, req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}

	if err := h.admin.SetAvailability(c.Request().Context(), cl.UserID, id, date, *req.Available); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AddSlot handles POST /admin/slots.
//
// @Summary      Add an open capacity slot
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      capacitySlotRequest  true  "Clinic and time"
// @Success      201   {object}  domain.Appointment
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /admin/slots [post]
func (h *AdminHandler) AddSlot(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}
	var req capacitySlotRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	appt, err := h.admin.AddCapacitySlot(c.Request().Context(), cl.UserID, req.ClinicID, req.DateTime)
	observeLedger("add_slot", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, appt)
}

// RemoveAppointment handles DELETE /admin/appointments/:id.
//
// @Summary      Delete an appointment
// @Tags         admin
// @Security     BearerAuth
// @Param        id  path  int  true  "Appointment ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Router       /admin/appointments/{id} [delete]
func (h *AdminHandler) RemoveAppointment(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	err = h.admin.RemoveAppointment(c.Request().Context(), cl.UserID, id)
	observeLedger("remove", err)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ConfirmAppointment handles POST /admin/appointments/:id/confirm.
//
// @Summary      Confirm a pending appointment
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Appointment ID"
// @Success      200  {object}  domain.Appointment
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /admin/appointments/{id}/confirm [post]
func (h *AdminHandler) ConfirmAppointment(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	appt, err := h.admin.ConfirmAppointment(c.Request().Context(), cl.UserID, id)
	observeLedger("confirm", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, appt)
}

// History handles GET /admin/appointments/:id/history.
//
// @Summary      Audit trail of an appointment
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Appointment ID"
// @Success      200  {array}   domain.AppointmentEvent
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/appointments/{id}/history [get]
func (h *AdminHandler) History(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	events, err := h.admin.AppointmentHistory(c.Request().Context(), cl.UserID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

// Broadcast handles POST /admin/notifications.
//
// @Summary      Notify several users
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      broadcastRequest  true  "Recipients and message"
// @Success      200   {object}  broadcastResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /admin/notifications [post]
func (h *AdminHandler) Broadcast(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}
	var req broadcastRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	res, err := h.admin.Broadcast(c.Request().Context(), cl.UserID, req.Usernames, req.Message)
	if err != nil {
		return err
	}

	out := broadcastResponse{Sent: res.Sent, Failed: make(map[string]string, len(res.Failed))}
	if out.Sent == nil {
		out.Sent = []string{}
	}
	for name, ferr := range res.Failed {
		out.Failed[name] = ferr.Error()
	}
	return c.JSON(http.StatusOK, out)
}

// AssignStaff handles POST /admin/staff.
//
// @Summary      Bind a staff user to a clinic
// @Tags         admin
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  assignStaffRequest  true  "Staff user and clinic"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/staff [post]
func (h *AdminHandler) AssignStaff(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}
	var req assignStaffRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	if err := h.admin.AssignClinic(c.Request().Context(), cl.UserID, req.UserID, req.ClinicID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AdjustCapacity handles POST /admin/capacity, relaying to the remote
// capacity endpoint.
//
// @Summary      Adjust remote clinic capacity
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      capacityRequest  true  "Clinic code and reserved count"
// @Success      200   {object}  object
// @Failure      403   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /admin/capacity [post]
func (h *AdminHandler) AdjustCapacity(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}
	var req capacityRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	payload, err := h.admin.AdjustCapacity(c.Request().Context(), cl.UserID, ports.CapacityAdjustment{
		ClinicCode:           req.ClinicCode,
		ReservedAppointments: req.ReservedAppointments,
	})
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, payload)
}
