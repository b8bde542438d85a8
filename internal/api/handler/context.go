package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinicreserve/reservation-system/internal/api/middleware"
)

// claims is the caller identity injected by the Auth middleware.
type claims struct {
	UserID   string
	Username string
	Role     string
}

// ctxClaims extracts the auth claims and fails fast when the middleware did
// not run or the token carried no identity.
func ctxClaims(c echo.Context) (claims, error) {
	var cl claims
	cl.UserID, _ = c.Get(middleware.CtxUserID).(string)
	cl.Username, _ = c.Get(middleware.CtxUsername).(string)
	cl.Role, _ = c.Get(middleware.CtxRole).(string)
	if cl.UserID == "" || cl.Role == "" {
		return claims{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return cl, nil
}

// idParam parses a positive int64 path parameter.
func idParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// bindValid decodes the request body into req and runs the validator when
// one is registered on the echo instance.
func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
