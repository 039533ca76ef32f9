package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vetdesk/clinic-api/internal/email"
	"github.com/vetdesk/clinic-api/internal/model"
	"github.com/vetdesk/clinic-api/internal/repository"
	"github.com/vetdesk/clinic-api/internal/repository/postgres"
	"github.com/vetdesk/clinic-api/internal/service/audit"
	"github.com/vetdesk/clinic-api/internal/session"
	"github.com/vetdesk/clinic-api/pkg/auth"
	"github.com/vetdesk/clinic-api/pkg/security"
)

const (
	resetTokenExpiry = 10 * time.Minute
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
	bcryptCost       = 12
)

type Service struct {
	userRepo  repository.UserRepository
	jwtSvc    auth.JWTService
	tokenRepo postgres.TokenRepository
	emailSvc  email.Service
	sessions  session.Store
	auditor   *audit.Service
	hasher    security.PasswordHasher
}

func NewService(userRepo repository.UserRepository, jwtSvc auth.JWTService,
	tokenRepo postgres.TokenRepository, emailSvc email.Service,
	sessions session.Store, auditor *audit.Service) *Service {
	return &Service{
		userRepo:  userRepo,
		jwtSvc:    jwtSvc,
		tokenRepo: tokenRepo,
		emailSvc:  emailSvc,
		sessions:  sessions,
		auditor:   auditor,
		hasher:    security.NewBcryptHasher(bcryptCost),
	}
}

// Login verifies credentials and mints tokens. Each login starts a fresh
// editing session: the session id in the token keys all access-code and
// diagnosis-lock state.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	if user.Status == model.UserStatusLocked {
		if time.Since(user.LastLoginAttempt) < lockoutDuration {
			return nil, fmt.Errorf("account is locked, please try again later")
		}
		user.Status = model.UserStatusActive
		user.LoginAttempts = 0
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		user.LoginAttempts++
		user.LastLoginAttempt = time.Now()

		if user.LoginAttempts >= maxLoginAttempts {
			user.Status = model.UserStatusLocked
		}

		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to update login attempts: %w", err)
		}

		return nil, model.ErrInvalidCredentials
	}

	user.LoginAttempts = 0
	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update login timestamp: %w", err)
	}

	sessionID := uuid.New().String()

	accessToken, err := s.jwtSvc.GenerateAccessToken(user, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	refreshToken, err := s.jwtSvc.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	s.auditor.Log(ctx, user.ID, user.Role, "login", "auth", user.ID, nil)

	return &model.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout ends the editing session, dropping any live access code and
// returning the diagnosis lock to its initial Locked state.
func (s *Service) Logout(ctx context.Context, claims *model.TokenClaims) error {
	if claims.SessionID == "" {
		return nil
	}
	if err := s.sessions.End(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	s.auditor.Log(ctx, claims.UserID, claims.Role, "logout", "auth", claims.UserID, nil)
	return nil
}

func (s *Service) ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}

func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	// A refresh starts a new editing session too; the old one simply ages
	// out of the store.
	sessionID := uuid.New().String()

	accessToken, err := s.jwtSvc.GenerateAccessToken(user, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	newRefresh, err := s.jwtSvc.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &model.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
	}, nil
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	existing, _ := s.userRepo.GetByEmail(ctx, req.Email)
	if existing != nil {
		return nil, fmt.Errorf("email already registered")
	}

	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hashedPassword,
		Role:         model.ParseRole(req.Role),
		Status:       model.UserStatusActive,
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.auditor.Log(ctx, user.ID, user.Role, "register", "auth", user.ID, nil)

	return user, nil
}

func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		return nil // don't reveal whether the address exists
	}

	token := uuid.New().String()
	if err := s.tokenRepo.StoreResetToken(ctx, user.ID, token, time.Now().Add(resetTokenExpiry)); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.emailSvc.SendPasswordReset(ctx, user.Email, token); err != nil {
		log.Error().Err(err).Msg("failed to send reset email")
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := s.tokenRepo.ValidateResetToken(ctx, token)
	if err != nil {
		return fmt.Errorf("invalid or expired reset token")
	}

	hashedPassword, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("user not found: %w", err)
	}

	user.PasswordHash = hashedPassword
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.tokenRepo.InvalidateResetToken(ctx, token); err != nil {
		return fmt.Errorf("failed to invalidate reset token: %w", err)
	}

	s.auditor.Log(ctx, user.ID, user.Role, "reset_password", "auth", user.ID, nil)
	return nil
}
