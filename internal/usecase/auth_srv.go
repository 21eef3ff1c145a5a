package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"instamakaan/internal/data/entity"
	"instamakaan/internal/data/repository"
	"instamakaan/internal/dto/request"
	"instamakaan/internal/dto/response"
	"instamakaan/pkg/mailer"
	"instamakaan/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MsgOTPSent              = "OTP sent to email"
	MsgOTPResent            = "OTP resent"
	MsgResetLinkSent        = "If the email exists, a reset link was sent"
	MsgPasswordResetSuccess = "Password reset successful"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.MessageResponse, error)
	ResendOTP(ctx context.Context, req *request.ResendOTPRequest) (*response.MessageResponse, error)
	VerifyEmail(ctx context.Context, req *request.VerifyEmailRequest) (*response.TokenResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.TokenResponse, error)
	ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest) (*response.MessageResponse, error)
	ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) (*response.MessageResponse, error)
}

// SessionIssuer signs session tokens for an authenticated account.
type SessionIssuer interface {
	Issue(subject, role string) (string, time.Time, error)
}

type authService struct {
	repo   *repository.Repository
	tokens SessionIssuer
	mail   mailer.Mailer
	audit  Auditor
	config *utils.Config
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(
	repo *repository.Repository,
	tokens SessionIssuer,
	mail mailer.Mailer,
	audit Auditor,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:   repo,
		tokens: tokens,
		mail:   mail,
		audit:  audit,
		config: config,
		log:    log.With(zap.String("service", "auth")),
		now:    time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.MessageResponse, error) {
	// 1. Validate input
	if err := validate(req); err != nil {
		s.log.Warn("Register validation failed", zap.Error(err))
		return nil, err
	}
	email := normalizeEmail(req.Email)

	// 2. Only a verified account blocks registration
	existing, err := s.repo.Account.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil && existing.IsVerified {
		return nil, ErrAlreadyExists
	}

	// 3. Unverified leftover: issue a fresh code to the inbox, keep the stored password
	if existing != nil {
		if err := s.checkResendWindow(existing); err != nil {
			return nil, err
		}
		if err := s.issueOTP(ctx, email); err != nil {
			return nil, err
		}
		s.log.Info("Registration repeated for unverified account",
			zap.String("account_id", existing.ID.String()))
		return &response.MessageResponse{Message: MsgOTPSent}, nil
	}

	// 4. Hash password
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// 5. Create unverified account with an outstanding OTP
	code, err := utils.GenerateOTP(s.config.OTP.Length)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	expiresAt := now.Add(s.config.OTP.Expiry())

	account := &entity.Account{
		Email:         email,
		PasswordHash:  hash,
		Role:          entity.RoleTenant,
		IsVerified:    false,
		OTPCode:       &code,
		OTPExpiresAt:  &expiresAt,
		OTPLastSentAt: &now,
		OTPRetryCount: 0,
	}
	account.ID = uuid.New()
	account.CreatedAt = now
	account.UpdatedAt = now

	if err := s.repo.Account.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	// 6. Send the code; on failure the account stays and resend recovers it
	if err := s.dispatchOTP(ctx, email, code); err != nil {
		return nil, err
	}

	s.audit.Record(account, entity.AuditRegister, nil)
	s.log.Info("Account registered", zap.String("account_id", account.ID.String()))

	return &response.MessageResponse{Message: MsgOTPSent}, nil
}

func (s *authService) ResendOTP(ctx context.Context, req *request.ResendOTPRequest) (*response.MessageResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)

	account, err := s.repo.Account.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if account == nil {
		return nil, ErrNotFound
	}
	if account.IsVerified {
		return nil, ErrAlreadyVerified
	}

	if err := s.checkResendWindow(account); err != nil {
		s.log.Warn("OTP resend throttled", zap.String("account_id", account.ID.String()))
		return nil, err
	}

	if err := s.issueOTP(ctx, email); err != nil {
		return nil, err
	}

	s.log.Info("OTP resent", zap.String("account_id", account.ID.String()))
	return &response.MessageResponse{Message: MsgOTPResent}, nil
}

func (s *authService) VerifyEmail(ctx context.Context, req *request.VerifyEmailRequest) (*response.TokenResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)

	account, err := s.repo.Account.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if account == nil {
		return nil, ErrNotFound
	}

	// retry cap is checked before expiry and before the code itself
	if account.OTPRetryCount >= s.config.OTP.MaxRetries {
		s.log.Warn("OTP retry limit reached", zap.String("account_id", account.ID.String()))
		return nil, ErrRetryLimitExceeded
	}

	if !account.HasPendingOTP() {
		if account.IsVerified {
			return nil, ErrAlreadyVerified
		}
		return nil, ErrInvalidOTP
	}

	if s.now().After(*account.OTPExpiresAt) {
		return nil, ErrOTPExpired
	}

	if subtle.ConstantTimeCompare([]byte(*account.OTPCode), []byte(req.OTP)) != 1 {
		if err := s.repo.Account.IncrementOTPRetry(ctx, email); err != nil {
			return nil, fmt.Errorf("record failed attempt: %w", err)
		}
		s.log.Warn("Invalid OTP submitted",
			zap.String("account_id", account.ID.String()),
			zap.Int("retry_count", account.OTPRetryCount+1))
		return nil, ErrInvalidOTP
	}

	verified, err := s.repo.Account.MarkVerified(ctx, email, req.OTP)
	if err != nil {
		return nil, fmt.Errorf("mark verified: %w", err)
	}
	if !verified {
		// the code was replaced or consumed after we read it
		return nil, ErrInvalidOTP
	}

	resp, err := s.session(account)
	if err != nil {
		return nil, err
	}

	s.audit.Record(account, entity.AuditVerifyEmail, nil)
	s.log.Info("Email verified", zap.String("account_id", account.ID.String()))

	return resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.TokenResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)

	account, err := s.repo.Account.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if account == nil {
		utils.BurnPasswordCheck(req.Password)
		s.log.Warn("Login for unknown email")
		return nil, ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(req.Password, account.PasswordHash) {
		s.log.Warn("Invalid password", zap.String("account_id", account.ID.String()))
		return nil, ErrInvalidCredentials
	}

	if !account.IsVerified {
		return nil, ErrEmailNotVerified
	}

	resp, err := s.session(account)
	if err != nil {
		return nil, err
	}

	s.audit.Record(account, entity.AuditLogin, nil)
	s.log.Info("Account logged in", zap.String("account_id", account.ID.String()))

	return resp, nil
}

func (s *authService) ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest) (*response.MessageResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)
	reply := &response.MessageResponse{Message: MsgResetLinkSent}

	account, err := s.repo.Account.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if account == nil {
		s.log.Debug("Password reset requested for unknown email")
		return reply, nil
	}

	token, err := utils.GenerateResetToken()
	if err != nil {
		return nil, err
	}
	validFor := s.config.Reset.Expiry()
	expiresAt := s.now().UTC().Add(validFor)

	if err := s.repo.Account.SetResetToken(ctx, email, token, expiresAt); err != nil {
		return nil, fmt.Errorf("store reset token: %w", err)
	}

	link := s.config.App.FrontendURL + "/reset-password?token=" + url.QueryEscape(token)
	if err := s.mail.Send(ctx, email, mailer.ResetMessage{Link: link, ValidFor: validFor}); err != nil {
		// surfacing this would reveal that the account exists
		s.log.Warn("Failed to send reset link", zap.Error(err), zap.String("account_id", account.ID.String()))
	}

	s.audit.Record(account, entity.AuditForgotPassword, nil)
	s.log.Info("Password reset issued", zap.String("account_id", account.ID.String()))

	return reply, nil
}

func (s *authService) ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) (*response.MessageResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	account, err := s.repo.Account.FindByResetToken(ctx, req.Token)
	if err != nil {
		return nil, fmt.Errorf("find reset token: %w", err)
	}
	if account == nil {
		return nil, ErrInvalidResetToken
	}
	if account.ResetTokenExpiresAt == nil || s.now().After(*account.ResetTokenExpiresAt) {
		return nil, ErrResetTokenExpired
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("hash password: %w", err)
	}

	consumed, err := s.repo.Account.ConsumeResetToken(ctx, req.Token, hash)
	if err != nil {
		return nil, fmt.Errorf("consume reset token: %w", err)
	}
	if !consumed {
		return nil, ErrInvalidResetToken
	}

	s.audit.Record(account, entity.AuditResetPassword, nil)
	s.log.Info("Password reset", zap.String("account_id", account.ID.String()))

	return &response.MessageResponse{Message: MsgPasswordResetSuccess}, nil
}

// ==================== HELPER METHODS ====================

func (s *authService) checkResendWindow(account *entity.Account) error {
	if account.OTPLastSentAt == nil {
		return nil
	}
	elapsed := s.now().Sub(*account.OTPLastSentAt)
	if wait := s.config.OTP.ResendAfter() - elapsed; wait > 0 {
		return &ThrottledError{RetryAfter: wait}
	}
	return nil
}

// issueOTP overwrites any outstanding code, resets the retry counter and
// sends the new code.
func (s *authService) issueOTP(ctx context.Context, email string) error {
	code, err := utils.GenerateOTP(s.config.OTP.Length)
	if err != nil {
		return err
	}
	now := s.now().UTC()

	if err := s.repo.Account.SetOTP(ctx, email, code, now.Add(s.config.OTP.Expiry()), now); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	return s.dispatchOTP(ctx, email, code)
}

func (s *authService) dispatchOTP(ctx context.Context, email, code string) error {
	msg := mailer.OTPMessage{Code: code, ValidFor: s.config.OTP.Expiry()}
	if err := s.mail.Send(ctx, email, msg); err != nil {
		s.log.Error("Failed to send OTP", zap.Error(err), zap.String("email", email))

		// the send never happened, so do not hold the caller to the resend window
		if relErr := s.repo.Account.ReleaseOTPThrottle(ctx, email); relErr != nil {
			s.log.Warn("Failed to release OTP throttle", zap.Error(relErr), zap.String("email", email))
		}
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

func (s *authService) session(account *entity.Account) (*response.TokenResponse, error) {
	token, expiresAt, err := s.tokens.Issue(account.ID.String(), string(account.Role))
	if err != nil {
		s.log.Error("Failed to issue session token", zap.Error(err), zap.String("account_id", account.ID.String()))
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	return &response.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		Role:        account.Role,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
