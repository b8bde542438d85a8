package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicreserve/reservation-system/internal/core/ports"
)

type NotificationHandler struct {
	notifications ports.NotificationService
}

func NewNotificationHandler(notifications ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List handles GET /notifications.
//
// @Summary      List my notifications, newest first
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Notification
// @Failure      401  {object}  errorResponse
// @Router       /notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}

	items, err := h.notifications.List(c.Request().Context(), cl.Username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}
