package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"bookspace/internal/auth/validator"
	userserrors "bookspace/internal/users/errors"
	"bookspace/pkg/auth"
	"bookspace/pkg/config"
	apperrors "bookspace/pkg/errors"
	"bookspace/pkg/events"
	"bookspace/pkg/model"
	"bookspace/pkg/otp"
	"bookspace/pkg/password"
	"bookspace/pkg/sanitizer"
)

const resetCodeTTL = 10 * time.Minute

type AuthService interface {
	SendOTP(ctx context.Context, req *model.SendOTPRequest) error
	Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	ForgotPassword(ctx context.Context, req *model.ForgotPasswordRequest) error
	VerifyResetOTP(ctx context.Context, req *model.VerifyOTPRequest) error
	ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error
}

// UserStore is the part of the user repository the auth flows need.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	SetResetOTP(ctx context.Context, id, code string, expiresAt time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// CodeStore holds signup codes until they are verified or expire.
type CodeStore interface {
	Issue(key string) (string, time.Time, error)
	Verify(key, code string) error
}

type authService struct {
	users     UserStore
	codes     CodeStore
	hasher    *password.Hasher
	tokens    *auth.TokenService
	validator *validator.AuthValidator
	publisher events.Publisher
	cfg       *config.Config
	now       func() time.Time
}

func NewAuthService(
	users UserStore,
	codes CodeStore,
	hasher *password.Hasher,
	tokens *auth.TokenService,
	validator *validator.AuthValidator,
	publisher events.Publisher,
	cfg *config.Config,
) AuthService {
	return &authService{
		users:     users,
		codes:     codes,
		hasher:    hasher,
		tokens:    tokens,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// SendOTP issues a signup code for an email that is not registered yet.
func (s *authService) SendOTP(ctx context.Context, req *model.SendOTPRequest) error {
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return validationError("Validation failed", err)
	}

	_, err := s.users.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return apperrors.Conflict("An account with this email already exists")
	case !errors.Is(err, userserrors.ErrNotFound):
		s.cfg.Log.Error("Failed to look up email", "email", req.Email, "error", err)
		return apperrors.Internal("Failed to send OTP", err)
	}

	code, expiresAt, err := s.codes.Issue(req.Email)
	if err != nil {
		return apperrors.Internal("Failed to send OTP", err)
	}

	s.cfg.Log.Info("Signup OTP issued", "email", req.Email, "expires_at", expiresAt)
	events.Emit(ctx, s.publisher, s.cfg.Log, events.Notification{
		Type:       events.OTPRequested,
		Recipient:  req.Email,
		Code:       code,
		ExpiresAt:  &expiresAt,
		OccurredAt: s.now().UTC(),
	})
	return nil
}

// Signup consumes the signup code and registers a pending user.
func (s *authService) Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error) {
	req.Name = sanitizer.NormalizeName(req.Name)
	req.Email = sanitizer.NormalizeEmail(req.Email)
	rawPhone := req.Phone
	req.Phone = sanitizer.NormalizePhone(req.Phone, s.cfg.DefaultPhoneRegion)
	if rawPhone != "" && req.Phone == "" {
		return nil, apperrors.Validation("Validation failed", map[string]any{
			"phone": "Please include a valid phone number",
		})
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, validationError("Validation failed", err)
	}

	if err := s.codes.Verify(req.Email, req.OTP); err != nil {
		switch {
		case errors.Is(err, otp.ErrExpired):
			return nil, apperrors.InvalidInput("OTP has expired")
		case errors.Is(err, otp.ErrTooManyAttempts):
			return nil, apperrors.InvalidInput("Too many invalid attempts, please request a new OTP")
		}
		return nil, apperrors.InvalidInput("Invalid OTP")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal("Failed to register user", err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Role:         config.RoleUser,
		Status:       config.UserPending,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("An account with this email already exists")
		}
		s.cfg.Log.Error("Failed to create user", "email", req.Email, "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	s.cfg.Log.Info("User registered, pending approval", "id", user.ID, "email", user.Email)
	return user, nil
}

func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, validationError("Validation failed", err)
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			s.cfg.Log.Info("Login failed: user not registered", "email", req.Email)
			return nil, apperrors.Unauthorized("Invalid email or password")
		}
		return nil, apperrors.Internal("Failed to log in", err)
	}
	if user.IsDeleted {
		s.cfg.Log.Info("Login failed: user deleted", "email", req.Email)
		return nil, apperrors.Unauthorized("Invalid email or password")
	}
	if user.Status != config.UserActive {
		s.cfg.Log.Info("Login failed: user not active", "email", req.Email, "status", user.Status)
		return nil, apperrors.Forbidden("Your account is " + user.Status + ". Please contact an administrator.")
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			s.cfg.Log.Info("Login failed: password mismatch", "email", req.Email)
			return nil, apperrors.Unauthorized("Invalid email or password")
		}
		return nil, apperrors.Internal("Failed to log in", err)
	}

	principal := auth.Principal{UserID: user.ID, Name: user.Name, Role: user.Role}
	token, err := s.tokens.GenerateToken(principal)
	if err != nil {
		return nil, apperrors.Internal("Failed to log in", err)
	}

	s.cfg.Log.Info("User logged in", "id", user.ID, "role", user.Role)
	return &model.LoginResponse{
		Token: token,
		User:  model.UserSummary{ID: user.ID, Name: user.Name, Role: user.Role},
	}, nil
}

// ForgotPassword stores a reset code on the user record and emits it.
func (s *authService) ForgotPassword(ctx context.Context, req *model.ForgotPasswordRequest) error {
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return validationError("Validation failed", err)
	}

	user, err := s.findUser(ctx, req.Email)
	if err != nil {
		return err
	}

	code, err := otp.Generate()
	if err != nil {
		return apperrors.Internal("Failed to send OTP", err)
	}
	expiresAt := s.now().UTC().Add(resetCodeTTL)
	if err := s.users.SetResetOTP(ctx, user.ID, code, expiresAt); err != nil {
		s.cfg.Log.Error("Failed to store reset OTP", "id", user.ID, "error", err)
		return apperrors.Internal("Failed to send OTP", err)
	}

	s.cfg.Log.Info("Password reset OTP issued", "id", user.ID)
	events.Emit(ctx, s.publisher, s.cfg.Log, events.Notification{
		Type:       events.PasswordResetRequested,
		Recipient:  user.Email,
		Name:       user.Name,
		Code:       code,
		ExpiresAt:  &expiresAt,
		OccurredAt: s.now().UTC(),
	})
	return nil
}

func (s *authService) VerifyResetOTP(ctx context.Context, req *model.VerifyOTPRequest) error {
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return validationError("Validation failed", err)
	}

	user, err := s.findUser(ctx, req.Email)
	if err != nil {
		return err
	}
	return s.checkResetCode(user, req.OTP)
}

func (s *authService) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error {
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return validationError("Validation failed", err)
	}

	user, err := s.findUser(ctx, req.Email)
	if err != nil {
		return err
	}
	if err := s.checkResetCode(user, req.OTP); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperrors.Internal("Failed to reset password", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		s.cfg.Log.Error("Failed to update password", "id", user.ID, "error", err)
		return apperrors.Internal("Failed to reset password", err)
	}

	s.cfg.Log.Info("Password reset", "id", user.ID)
	return nil
}

func (s *authService) findUser(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFound("User")
		}
		return nil, apperrors.Internal("Failed to retrieve user", err)
	}
	if user.IsDeleted {
		return nil, apperrors.NotFound("User")
	}
	return user, nil
}

func (s *authService) checkResetCode(user *model.User, code string) error {
	if user.ResetPasswordOTP == "" || user.ResetPasswordOTPExpires == nil ||
		subtle.ConstantTimeCompare([]byte(user.ResetPasswordOTP), []byte(code)) != 1 ||
		!s.now().Before(*user.ResetPasswordOTPExpires) {
		return apperrors.InvalidInput("Invalid or expired OTP")
	}
	return nil
}

func validationError(message string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
