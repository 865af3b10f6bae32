package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bazarit/marketplace-api/internal/core/domain"
	"github.com/bazarit/marketplace-api/internal/core/ports"
)

type stubOTPService struct {
	issueFn   func(ctx context.Context, phone string) (*ports.IssueResult, error)
	consumeFn func(ctx context.Context, phone, code string) error
}

func (s *stubOTPService) IssueChallenge(ctx context.Context, phone string) (*ports.IssueResult, error) {
	return s.issueFn(ctx, phone)
}

func (s *stubOTPService) ConsumeChallenge(ctx context.Context, phone, code string) error {
	return s.consumeFn(ctx, phone, code)
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestOTPHandler_Request_Success(t *testing.T) {
	expiry := time.Now().UTC().Add(5 * time.Minute).Truncate(time.Second)
	stub := &stubOTPService{
		issueFn: func(_ context.Context, phone string) (*ports.IssueResult, error) {
			if phone != "+251911000000" {
				t.Fatalf("unexpected phone: %s", phone)
			}
			return &ports.IssueResult{ExpiresAt: expiry}, nil
		},
	}
	h := NewOTPHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/v1/otp/request", `{"phone":"+251911000000"}`)
	if err := h.Request(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["expires_at"] == nil {
		t.Fatalf("expected expires_at in response: %v", resp)
	}
	// The code itself must never appear in the response body.
	if strings.Contains(rec.Body.String(), `"code"`) {
		t.Fatalf("response must not contain the code: %s", rec.Body.String())
	}
}

func TestOTPHandler_Request_MissingPhone(t *testing.T) {
	stub := &stubOTPService{
		issueFn: func(context.Context, string) (*ports.IssueResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewOTPHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/v1/otp/request", `{}`)
	err := h.Request(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestOTPHandler_Request_RateLimited(t *testing.T) {
	stub := &stubOTPService{
		issueFn: func(context.Context, string) (*ports.IssueResult, error) {
			return nil, domain.ErrOTPRateLimited
		},
	}
	h := NewOTPHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/v1/otp/request", `{"phone":"+251911000000"}`)
	if err := h.Request(c); !errors.Is(err, domain.ErrOTPRateLimited) {
		t.Fatalf("expected ErrOTPRateLimited passed to the error handler, got %v", err)
	}
}

func TestOTPHandler_Verify_Success(t *testing.T) {
	stub := &stubOTPService{
		consumeFn: func(_ context.Context, phone, code string) error {
			if phone != "+251911000000" || code != "123456" {
				t.Fatalf("unexpected args: %s %s", phone, code)
			}
			return nil
		},
	}
	h := NewOTPHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/v1/otp/verify", `{"phone":"+251911000000","code":"123456"}`)
	if err := h.Verify(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestOTPHandler_Verify_BadCodeFormat(t *testing.T) {
	stub := &stubOTPService{
		consumeFn: func(context.Context, string, string) error {
			t.Fatalf("should not be called")
			return nil
		},
	}
	h := NewOTPHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/v1/otp/verify", `{"phone":"+251911000000","code":"12"}`)
	err := h.Verify(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestOTPHandler_Verify_Invalid(t *testing.T) {
	stub := &stubOTPService{
		consumeFn: func(context.Context, string, string) error {
			return domain.ErrOTPInvalid
		},
	}
	h := NewOTPHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/v1/otp/verify", `{"phone":"+251911000000","code":"123456"}`)
	if err := h.Verify(c); !errors.Is(err, domain.ErrOTPInvalid) {
		t.Fatalf("expected ErrOTPInvalid passed to the error handler, got %v", err)
	}
}
