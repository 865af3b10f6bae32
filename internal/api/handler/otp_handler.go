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

type OTPHandler struct {
	otpService ports.OTPService
}

func NewOTPHandler(otpService ports.OTPService) *OTPHandler {
	return &OTPHandler{otpService: otpService}
}

type otpRequestRequest struct {
	Phone string `json:"phone" validate:"required"`
}

type otpRequestResponse struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

type otpVerifyRequest struct {
	Phone string `json:"phone" validate:"required"`
	Code  string `json:"code"  validate:"required,len=6,numeric"`
}

// Request issues a challenge for the phone and dispatches the code out of
// band. The code is never part of the response.
//
// @Summary      Request a one-time code
// @Tags         otp
// @Accept       json
// @Produce      json
// @Param        body  body      otpRequestRequest  true  "Phone number"
// @Success      200   {object}  otpRequestResponse
// @Failure      400   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /v1/otp/request [post]
func (h *OTPHandler) Request(c echo.Context) error {
	var req otpRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	issued, err := h.otpService.IssueChallenge(c.Request().Context(), req.Phone)
	if err != nil {
		if errors.Is(err, domain.ErrOTPRateLimited) {
			metrics.OTPRateLimitedTotal.Inc()
		}
		return err
	}

	metrics.OTPIssuedTotal.Inc()
	return c.JSON(http.StatusOK, otpRequestResponse{
		Message:   "OTP sent successfully",
		ExpiresAt: issued.ExpiresAt,
	})
}

// Verify consumes the live challenge for the phone.
//
// @Summary      Verify a one-time code
// @Tags         otp
// @Accept       json
// @Produce      json
// @Param        body  body      otpVerifyRequest  true  "Phone and code"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/otp/verify [post]
func (h *OTPHandler) Verify(c echo.Context) error {
	var req otpVerifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.otpService.ConsumeChallenge(c.Request().Context(), req.Phone, req.Code); err != nil {
		metrics.OTPVerifyTotal.WithLabelValues("invalid").Inc()
		return err
	}

	metrics.OTPVerifyTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, map[string]string{"message": "OTP verified successfully"})
}
