package adaptor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"instamakaan/internal/data/entity"
	"instamakaan/internal/dto/request"
	"instamakaan/internal/dto/response"
	"instamakaan/internal/usecase"
	"instamakaan/pkg/utils"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubAuth returns err from every call, or a canned success when err is nil.
type stubAuth struct {
	err   error
	calls int
}

func (s *stubAuth) message(msg string) (*response.MessageResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &response.MessageResponse{Message: msg}, nil
}

func (s *stubAuth) token() (*response.TokenResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &response.TokenResponse{
		AccessToken: "jwt",
		TokenType:   "bearer",
		ExpiresAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Role:        entity.RoleTenant,
	}, nil
}

func (s *stubAuth) Register(ctx context.Context, req *request.RegisterRequest) (*response.MessageResponse, error) {
	return s.message(usecase.MsgOTPSent)
}

func (s *stubAuth) ResendOTP(ctx context.Context, req *request.ResendOTPRequest) (*response.MessageResponse, error) {
	return s.message(usecase.MsgOTPResent)
}

func (s *stubAuth) VerifyEmail(ctx context.Context, req *request.VerifyEmailRequest) (*response.TokenResponse, error) {
	return s.token()
}

func (s *stubAuth) Login(ctx context.Context, req *request.LoginRequest) (*response.TokenResponse, error) {
	return s.token()
}

func (s *stubAuth) ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest) (*response.MessageResponse, error) {
	return s.message(usecase.MsgResetLinkSent)
}

func (s *stubAuth) ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) (*response.MessageResponse, error) {
	return s.message(usecase.MsgPasswordResetSuccess)
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

const loginBody = `{"email":"a@x.com","password":"password1"}`

func TestRegisterCreated(t *testing.T) {
	svc := &stubAuth{}
	h := NewAuthHandler(svc, zap.NewNop())

	rec := post(h.Register, loginBody)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeEnvelope(t, rec)
	require.Equal(t, true, body["status"])
	require.Equal(t, usecase.MsgOTPSent, body["message"])
}

func TestHandlerRejectsMalformedJSON(t *testing.T) {
	svc := &stubAuth{}
	h := NewAuthHandler(svc, zap.NewNop())

	rec := post(h.Login, `{"email":`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, 0, svc.calls)
}

func TestHandlerValidatesBeforeService(t *testing.T) {
	svc := &stubAuth{}
	h := NewAuthHandler(svc, zap.NewNop())

	rec := post(h.Register, `{"email":"nope","password":"short"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, 0, svc.calls)
	errs, ok := decodeEnvelope(t, rec)["errors"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, errs, "email")
	require.Contains(t, errs, "password")
}

func TestLoginReturnsToken(t *testing.T) {
	h := NewAuthHandler(&stubAuth{}, zap.NewNop())

	rec := post(h.Login, loginBody)

	require.Equal(t, http.StatusOK, rec.Code)
	data, ok := decodeEnvelope(t, rec)["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "jwt", data["access_token"])
	require.Equal(t, "TENANT", data["role"])
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{usecase.ErrNotFound, http.StatusNotFound},
		{usecase.ErrAlreadyExists, http.StatusConflict},
		{usecase.ErrAlreadyVerified, http.StatusConflict},
		{usecase.ErrInvalidCredentials, http.StatusUnauthorized},
		{usecase.ErrEmailNotVerified, http.StatusForbidden},
		{usecase.ErrRetryLimitExceeded, http.StatusForbidden},
		{&usecase.ThrottledError{RetryAfter: 12 * time.Second}, http.StatusTooManyRequests},
		{usecase.ErrOTPExpired, http.StatusBadRequest},
		{usecase.ErrInvalidOTP, http.StatusBadRequest},
		{usecase.ErrInvalidResetToken, http.StatusBadRequest},
		{usecase.ErrResetTokenExpired, http.StatusBadRequest},
		{&usecase.ValidationError{Fields: map[string]string{"email": "bad"}}, http.StatusBadRequest},
		{fmt.Errorf("%w: smtp down", usecase.ErrDeliveryFailed), http.StatusBadGateway},
		{errors.New("pq: connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			h := NewAuthHandler(&stubAuth{err: tc.err}, zap.NewNop())
			rec := post(h.Login, loginBody)

			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, false, decodeEnvelope(t, rec)["status"])
		})
	}
}

func TestThrottledSetsRetryAfter(t *testing.T) {
	h := NewAuthHandler(&stubAuth{err: &usecase.ThrottledError{RetryAfter: 12500 * time.Millisecond}}, zap.NewNop())

	rec := post(h.ResendOTP, `{"email":"a@x.com"}`)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "13", rec.Header().Get("Retry-After"))
}

func TestInternalErrorsDoNotLeak(t *testing.T) {
	h := NewAuthHandler(&stubAuth{err: errors.New("find account: dial tcp 10.0.0.5:27017")}, zap.NewNop())

	rec := post(h.Login, loginBody)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "10.0.0.5")

	h = NewAuthHandler(&stubAuth{err: fmt.Errorf("%w: 535 auth failed for smtp.internal", usecase.ErrDeliveryFailed)}, zap.NewNop())
	rec = post(h.Register, loginBody)
	require.NotContains(t, rec.Body.String(), "smtp.internal")
}

func TestInvalidCredentialsResponsesIdentical(t *testing.T) {
	h := NewAuthHandler(&stubAuth{err: usecase.ErrInvalidCredentials}, zap.NewNop())

	first := post(h.Login, `{"email":"ghost@x.com","password":"password1"}`)
	second := post(h.Login, `{"email":"a@x.com","password":"wrong-pass"}`)

	require.Equal(t, first.Code, second.Code)
	require.Equal(t, first.Body.Bytes(), second.Body.Bytes())
}

func TestForgotPasswordAlwaysSucceeds(t *testing.T) {
	h := NewAuthHandler(&stubAuth{}, zap.NewNop())

	rec := post(h.ForgotPassword, `{"email":"ghost@x.com"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, usecase.MsgResetLinkSent, decodeEnvelope(t, rec)["message"])
}

func TestMe(t *testing.T) {
	h := NewAuthHandler(&stubAuth{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = req.WithContext(utils.SetAccountContext(req.Context(), "acc-7", "TENANT"))
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data, ok := decodeEnvelope(t, rec)["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "acc-7", data["account_id"])
	require.Equal(t, "TENANT", data["role"])

	rec = httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
