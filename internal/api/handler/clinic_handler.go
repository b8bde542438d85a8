package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicreserve/reservation-system/internal/core/ports"
)

// ClinicHandler serves the read side of the clinic registry.
type ClinicHandler struct {
	clinics ports.ClinicService
}

func NewClinicHandler(clinics ports.ClinicService) *ClinicHandler {
	return &ClinicHandler{clinics: clinics}
}

// List handles GET /clinics.
//
// @Summary      List clinics
// @Tags         clinics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Clinic
// @Failure      401  {object}  errorResponse
// @Router       /clinics [get]
func (h *ClinicHandler) List(c echo.Context) error {
	clinics, err := h.clinics.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clinics)
}

// Get handles GET /clinics/:id.
//
// @Summary      Get a clinic with its availability
// @Tags         clinics
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Clinic ID"
// @Success      200  {object}  domain.Clinic
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /clinics/{id} [get]
func (h *ClinicHandler) Get(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	clinic, err := h.clinics.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clinic)
}
