package adaptor

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"instamakaan/internal/dto/request"
	"instamakaan/internal/dto/response"
	"instamakaan/internal/usecase"
	"instamakaan/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log.With(zap.String("handler", "auth")),
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "register")
		return
	}

	utils.ResponseCreated(w, resp.Message, resp)
}

// VerifyEmail handles POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyEmailRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.VerifyEmail(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "verify email")
		return
	}

	utils.ResponseSuccess(w, "Email verified", resp)
}

// ResendOTP handles POST /api/auth/resend-otp
func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req request.ResendOTPRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.ResendOTP(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "resend OTP")
		return
	}

	utils.ResponseSuccess(w, resp.Message, resp)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "login")
		return
	}

	utils.ResponseSuccess(w, "Login successful", resp)
}

// ForgotPassword handles POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ForgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.ForgotPassword(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "forgot password")
		return
	}

	utils.ResponseSuccess(w, resp.Message, resp)
}

// ResetPassword handles POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ResetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.ResetPassword(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "reset password")
		return
	}

	utils.ResponseSuccess(w, resp.Message, resp)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	accountID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}
	role, _ := utils.GetRoleFromContext(r.Context())

	utils.ResponseSuccess(w, "Session active", &response.SessionResponse{
		AccountID: accountID,
		Role:      role,
	})
}

// decode reads the JSON body into req and validates it. It writes the error
// response itself and reports whether the handler should continue.
func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return false
	}

	return true
}

// handleServiceError maps usecase errors to HTTP responses.
func (h *AuthHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	var validationErr *usecase.ValidationError
	var throttled *usecase.ThrottledError

	switch {
	case errors.As(err, &validationErr):
		h.log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, "Validation failed", validationErr.Fields)

	case errors.As(err, &throttled):
		h.log.Warn(operation+" throttled", zap.Duration("retry_after", throttled.RetryAfter))
		retryAfter := int(math.Ceil(throttled.RetryAfter.Seconds()))
		utils.ResponseTooManyRequests(w, usecase.ErrThrottled.Error(), retryAfter)

	case errors.Is(err, usecase.ErrNotFound):
		h.log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, usecase.ErrNotFound.Error())

	case errors.Is(err, usecase.ErrAlreadyExists),
		errors.Is(err, usecase.ErrAlreadyVerified):
		h.log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrInvalidCredentials):
		h.log.Warn(operation+" failed - invalid credentials")
		utils.ResponseUnauthorized(w, usecase.ErrInvalidCredentials.Error())

	case errors.Is(err, usecase.ErrEmailNotVerified),
		errors.Is(err, usecase.ErrRetryLimitExceeded):
		h.log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, usecase.ErrOTPExpired),
		errors.Is(err, usecase.ErrInvalidOTP),
		errors.Is(err, usecase.ErrInvalidResetToken),
		errors.Is(err, usecase.ErrResetTokenExpired):
		h.log.Warn(operation+" failed - rejected", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrDeliveryFailed):
		h.log.Error(operation+" failed - email delivery", zap.Error(err))
		utils.ResponseJSON(w, http.StatusBadGateway, false, usecase.ErrDeliveryFailed.Error(), nil, nil)

	default:
		h.log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
