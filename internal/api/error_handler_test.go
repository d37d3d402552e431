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

	"github.com/lumina-ai/studio/internal/core/domain"
)

func TestHTTPErrorHandler_DomainMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: balance 0, required 1", domain.ErrInsufficientBalance), http.StatusPaymentRequired},
		{domain.ErrDuplicateAccount, http.StatusConflict},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("generate: %w: %w", domain.ErrExternalOperationFailed, errors.New("quota")), http.StatusBadGateway},
		{domain.ErrUserNotFound, http.StatusNotFound},
		{domain.ErrTransactionNotFound, http.StatusNotFound},
		{domain.ErrPlanNotFound, http.StatusNotFound},
		{domain.ErrTransactionSettled, http.StatusConflict},
		{domain.ErrInvalidTransition, http.StatusUnprocessableEntity},
		{domain.ErrInvalidReference, http.StatusUnprocessableEntity},
		{domain.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("debit: %w: %w", domain.ErrStorageUnavailable, errors.New("i/o timeout")), http.StatusServiceUnavailable},
		{echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	e := echo.New()
	h := NewHTTPErrorHandler(zerolog.Nop())
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		h(tc.err, c)

		if rec.Code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
		var body errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == "" {
			t.Fatalf("%v: expected error envelope, got %s", tc.err, rec.Body.String())
		}
	}
}

func TestHTTPErrorHandler_DoesNotLeakInternals(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("mongo: connection refused at 10.0.0.3"), c)

	var body errorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Error != "internal server error" {
		t.Fatalf("internal error leaked: %q", body.Error)
	}
}
