package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bazarit/marketplace-api/internal/api/metrics"
	"github.com/bazarit/marketplace-api/internal/core/domain"
	"github.com/bazarit/marketplace-api/internal/core/ports"
)

const refreshCookieName = "refreshToken"

type AuthHandler struct {
	authService  ports.AuthService
	secureCookie bool
}

// NewAuthHandler creates the auth handler. secureCookie should be true in
// production so the renewal cookie is HTTPS-only.
func NewAuthHandler(authService ports.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookie: secureCookie}
}

type signupRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"    validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	OTP      string `json:"otp,omitempty"`
}

type loginRequest struct {
	Phone    string `json:"phone"    validate:"required"`
	Password string `json:"password" validate:"required"`
	OTP      string `json:"otp,omitempty"`
}

type authResponse struct {
	Message string       `json:"message,omitempty"`
	Token   string       `json:"token,omitempty"`
	User    *domain.User `json:"user,omitempty"`
}

// Signup drives the two-leg registration flow: without an OTP a challenge is
// issued (200, pending); with a valid OTP the account is created (201).
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Signup details, OTP on the second leg"
// @Success      200   {object}  authResponse
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /v1/auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.authService.Signup(c.Request().Context(), ports.SignupInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Password: req.Password,
		OTP:      req.OTP,
	})
	if err != nil {
		return err
	}

	if result.Pending {
		return c.JSON(http.StatusOK, authResponse{
			Message: "OTP sent to your phone. Please verify to complete registration.",
		})
	}

	return c.JSON(http.StatusCreated, authResponse{Message: "Signup successful", User: result.User})
}

// Login authenticates phone/password (and OTP when the deployment demands
// it), returns the access token, and sets the renewal cookie. The renewal
// credential travels only in the HTTP-only cookie, never in the JSON body.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.authService.Login(c.Request().Context(), req.Phone, req.Password, req.OTP)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failed").Inc()
		return err
	}

	if result.Pending {
		metrics.LoginsTotal.WithLabelValues("pending_otp").Inc()
		return c.JSON(http.StatusOK, authResponse{
			Message: "OTP sent to your phone. Please verify to complete login.",
		})
	}

	h.setRefreshCookie(c, result.RefreshToken, result.RefreshTTL)
	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, authResponse{
		Message: "Login successful",
		Token:   result.AccessToken,
		User:    result.User,
	})
}

// Refresh mints a new access token from the renewal cookie.
//
// @Summary      Refresh the access token
// @Tags         auth
// @Produce      json
// @Success      200   {object}  authResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "renewal credential missing")
	}

	token, err := h.authService.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, domain.ErrSessionInvalid) {
			h.clearRefreshCookie(c)
		}
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Message: "Access token refreshed", Token: token})
}

// Logout revokes the renewal credential and clears the cookie. Succeeds even
// without an existing credential.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200   {object}  authResponse
// @Router       /v1/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	refreshToken := ""
	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		refreshToken = cookie.Value
	}

	if err := h.authService.Logout(c.Request().Context(), refreshToken); err != nil {
		return err
	}

	h.clearRefreshCookie(c)
	return c.JSON(http.StatusOK, authResponse{Message: "Logged out"})
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, token string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/v1/auth",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/v1/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}
