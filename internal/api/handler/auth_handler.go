package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicreserve/reservation-system/internal/core/domain"
	"github.com/clinicreserve/reservation-system/internal/core/ports"
)

type AuthHandler struct {
	identity ports.IdentityService
}

func NewAuthHandler(identity ports.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	user, err := h.identity.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
		UseOTP:   req.UseOTP,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Description  credential is the password, or the one-time code when the user has use_otp enabled.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	res, err := h.identity.Authenticate(c.Request().Context(), req.Username, req.Credential)
	observeLogin(err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Token: res.Token, User: res.User})
}

// RequestOTP issues a one-time code and delivers it out of band. The response
// is the same whether or not the username exists.
//
// @Summary      Request a one-time login code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      otpRequest  true  "Username"
// @Success      202   {object}  statusResponse
// @Failure      400   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/otp [post]
func (h *AuthHandler) RequestOTP(c echo.Context) error {
	var req otpRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	if err := h.identity.RequestOTP(c.Request().Context(), req.Username); err != nil {
		return err
	}

	return c.JSON(http.StatusAccepted, statusResponse{Status: "otp sent"})
}

// Profile returns the caller's account.
//
// @Summary      Current user profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /me [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}

	user, err := h.identity.Profile(c.Request().Context(), cl.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile applies a partial update to the caller's account.
//
// @Summary      Update current user profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /me [patch]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	user, err := h.identity.UpdateProfile(c.Request().Context(), cl.UserID, ports.ProfileUpdate{
		Email:    req.Email,
		Password: req.Password,
		UseOTP:   req.UseOTP,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
