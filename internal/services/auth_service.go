package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Noor-Islam16/Coupon-Backend/internal/metrics"
	"github.com/Noor-Islam16/Coupon-Backend/internal/models"
	"github.com/Noor-Islam16/Coupon-Backend/internal/repository"
	"github.com/Noor-Islam16/Coupon-Backend/internal/utils"
)

// AuthConfig carries token and code lifetimes.
type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	RememberMeTTL time.Duration
	OTPExpiry     time.Duration
	OTPSubject    string
}

// AuthService handles signup, login and e-mail verification.
type AuthService struct {
	users    UserStore
	otps     OTPLedger
	mailer   Mailer
	limiter  OTPLimiter
	events   EventPublisher
	validate *validator.Validate
	cfg      AuthConfig
	log      *zap.SugaredLogger
	now      Clock
}

// AuthOption customises an AuthService.
type AuthOption func(*AuthService)

// WithOTPLimiter caps code issuance per user.
func WithOTPLimiter(l OTPLimiter) AuthOption {
	return func(s *AuthService) { s.limiter = l }
}

// WithAuthEvents publishes user.registered and user.verified events.
func WithAuthEvents(p EventPublisher) AuthOption {
	return func(s *AuthService) { s.events = p }
}

// WithAuthClock overrides the time source.
func WithAuthClock(c Clock) AuthOption {
	return func(s *AuthService) { s.now = c }
}

// NewAuthService constructs an AuthService.
func NewAuthService(users UserStore, otps OTPLedger, mailer Mailer, cfg AuthConfig, log *zap.SugaredLogger, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:    users,
		otps:     otps,
		mailer:   mailer,
		events:   noopPublisher{},
		validate: utils.NewValidator(),
		cfg:      cfg,
		log:      log,
		now:      systemClock,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignupInput is the signup request.
type SignupInput struct {
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// LoginInput is the login request.
type LoginInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// VerificationModeInput selects how the account is verified.
type VerificationModeInput struct {
	EmailCheck bool `json:"emailcheck"`
	PhoneCheck bool `json:"phonecheck"`
}

// VerificationModeResult acknowledges a verification mode selection.
type VerificationModeResult struct {
	Mode    string `json:"mode"`
	Message string `json:"message"`
}

// ResetPasswordInput completes a password reset.
type ResetPasswordInput struct {
	Email           string `json:"email" validate:"required,email"`
	Code            string `json:"code" validate:"required,len=6,number"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// AuthResult is a user with a freshly issued session token.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Signup registers an unverified user and returns a one-day session token.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := s.validate.Struct(in); err != nil {
		return nil, newError(KindValidation, utils.FormatValidationErrors(err))
	}

	exists, err := s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, internalError("failed to check email", err)
	}
	if exists {
		return nil, newError(KindConflict, "email is already registered")
	}

	exists, err = s.users.ExistsByPhone(ctx, in.Phone)
	if err != nil {
		return nil, internalError("failed to check phone", err)
	}
	if exists {
		return nil, newError(KindConflict, "phone is already registered")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, internalError("failed to hash password", err)
	}

	user := &models.User{
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		IsVerified:   false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(KindConflict, "email or phone is already registered")
		}
		return nil, internalError("failed to create user", err)
	}

	token, err := utils.GenerateToken(s.cfg.JWTSecret, user.ID, user.Email, s.cfg.TokenTTL)
	if err != nil {
		return nil, internalError("failed to generate token", err)
	}

	s.publish(ctx, "user.registered", user)
	s.log.Infow("user signed up", "user_id", user.ID)
	return &AuthResult{User: user, Token: token}, nil
}

// Login authenticates a verified user.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, internalError("failed to load user", err)
	}

	if !utils.CheckPassword(user.PasswordHash, in.Password) {
		return nil, errInvalidCredentials
	}

	if !user.IsVerified {
		return nil, errNotVerified
	}

	ttl := s.cfg.TokenTTL
	if in.RememberMe {
		ttl = s.cfg.RememberMeTTL
	}

	token, err := utils.GenerateToken(s.cfg.JWTSecret, user.ID, user.Email, ttl)
	if err != nil {
		return nil, internalError("failed to generate token", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// ResolveToken verifies a raw session token and loads its user.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errMissingToken
	}

	claims, err := utils.ParseToken(s.cfg.JWTSecret, token)
	if err != nil {
		s.log.Debugw("token verification failed", "error", err)
		return nil, errInvalidToken
	}

	id, err := claims.ID()
	if err != nil {
		return nil, errInvalidToken
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errUserNotFound
		}
		return nil, internalError("failed to load user", err)
	}
	return user, nil
}

// SelectVerificationMode starts verification for the token's user. Only the
// e-mail mode issues a code; the phone mode is acknowledged without one.
func (s *AuthService) SelectVerificationMode(ctx context.Context, token string, in VerificationModeInput) (*VerificationModeResult, error) {
	if in.EmailCheck == in.PhoneCheck {
		return nil, newError(KindValidation, "select exactly one of emailcheck or phonecheck")
	}

	user, err := s.ResolveToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if in.PhoneCheck {
		return &VerificationModeResult{Mode: string(models.OTPPurposePhone), Message: "phone verification is not available yet"}, nil
	}

	if err := s.issueCode(ctx, user, models.OTPPurposeEmail); err != nil {
		return nil, err
	}
	return &VerificationModeResult{Mode: string(models.OTPPurposeEmail), Message: "verification code sent to email"}, nil
}

// VerifyOTP consumes the user's e-mail code and marks the account verified.
func (s *AuthService) VerifyOTP(ctx context.Context, token, code string) (*AuthResult, error) {
	code = strings.TrimSpace(code)
	if err := s.validate.Var(code, "required,len=6,number"); err != nil {
		return nil, newError(KindValidation, "code must be exactly 6 digits")
	}

	user, err := s.ResolveToken(ctx, token)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.otps.Consume(ctx, user.ID, models.OTPPurposeEmail, code, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errIncorrectCode
		}
		return nil, internalError("failed to check verification code", err)
	}

	if err := s.users.MarkVerified(ctx, user.ID, now); err != nil {
		return nil, internalError("failed to verify user", err)
	}
	user.IsVerified = true
	user.UpdatedAt = now

	fresh, err := utils.GenerateToken(s.cfg.JWTSecret, user.ID, user.Email, s.cfg.TokenTTL)
	if err != nil {
		return nil, internalError("failed to generate token", err)
	}

	s.publish(ctx, "user.verified", user)
	return &AuthResult{User: user, Token: fresh}, nil
}

// ResendOTP replaces the caller's e-mail code with a new one.
func (s *AuthService) ResendOTP(ctx context.Context, identity Identity) error {
	user, err := s.Me(ctx, identity)
	if err != nil {
		return err
	}
	return s.issueCode(ctx, user, models.OTPPurposeEmail)
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, identity Identity) (*models.User, error) {
	user, err := s.users.FindByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errUserNotFound
		}
		return nil, internalError("failed to load user", err)
	}
	return user, nil
}

// ForgotPassword mails a reset code. Unknown addresses are acknowledged the
// same way so registration status does not leak.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return newError(KindValidation, "email must be a valid email address")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return internalError("failed to load user", err)
	}
	return s.issueCode(ctx, user, models.OTPPurposePasswordReset)
}

// ResetPassword sets a new password after checking the reset code.
func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	in.Email = normalizeEmail(in.Email)
	in.Code = strings.TrimSpace(in.Code)
	if err := s.validate.Struct(in); err != nil {
		return newError(KindValidation, utils.FormatValidationErrors(err))
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errIncorrectCode
		}
		return internalError("failed to load user", err)
	}

	now := s.now()
	if err := s.otps.Consume(ctx, user.ID, models.OTPPurposePasswordReset, in.Code, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errIncorrectCode
		}
		return internalError("failed to check reset code", err)
	}

	hash, err := utils.HashPassword(in.NewPassword)
	if err != nil {
		return internalError("failed to hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, now); err != nil {
		return internalError("failed to update password", err)
	}
	return nil
}

// issueCode stores a new code for (user, purpose), replacing any previous
// one, and mails it. A failed send leaves the stored code in place.
func (s *AuthService) issueCode(ctx context.Context, user *models.User, purpose models.OTPPurpose) error {
	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, user.ID.String())
		if err != nil {
			s.log.Warnw("otp limiter unavailable", "error", err)
		} else if !ok {
			return errOTPRateLimited
		}
	}

	code, err := generateCode()
	if err != nil {
		return internalError("failed to generate verification code", err)
	}

	now := s.now()
	record := &models.OneTimeCode{
		BaseModel: models.BaseModel{CreatedAt: now, UpdatedAt: now},
		UserID:    user.ID,
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: now.Add(s.cfg.OTPExpiry),
	}
	if err := s.otps.Replace(ctx, record); err != nil {
		return internalError("failed to store verification code", err)
	}
	metrics.OTPIssued.WithLabelValues(string(purpose)).Inc()

	heading := "Verify your email"
	subject := s.cfg.OTPSubject
	if purpose == models.OTPPurposePasswordReset {
		heading = "Reset your password"
		subject = "Your password reset code"
	}

	body, err := renderOTPMail(heading, code, s.cfg.OTPExpiry)
	if err != nil {
		return internalError("failed to render verification email", err)
	}
	if err := s.mailer.Send(ctx, user.Email, subject, body); err != nil {
		return internalError("failed to send verification code", err)
	}

	s.log.Infow("verification code sent", "user_id", user.ID, "purpose", purpose)
	return nil
}

func (s *AuthService) publish(ctx context.Context, eventType string, user *models.User) {
	payload := map[string]interface{}{
		"user_id":     user.ID,
		"email":       user.Email,
		"is_verified": user.IsVerified,
	}
	if err := s.events.Publish(ctx, eventType, user.ID.String(), payload); err != nil {
		s.log.Warnw("event publish failed", "event", eventType, "error", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
