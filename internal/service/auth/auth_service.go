// internal/service/auth/auth_service.go
package auth

import (
	"context"
	"time"

	"takataka-service/internal/domain/admin"
	xerrors "takataka-service/internal/pkg/errors"
	"takataka-service/internal/pkg/jwt"
	"takataka-service/internal/repository/postgres"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service authenticates back-office admins and issues access tokens.
type Service struct {
	repo   *postgres.AuthRepository
	tokens *jwt.Manager
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo *postgres.AuthRepository, tokens *jwt.Manager, logger *zap.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, logger: logger, now: time.Now}
}

// Login verifies credentials and returns a signed access token. A wrong
// email and a wrong password produce the same error.
func (s *Service) Login(ctx context.Context, req *admin.LoginRequest) (*admin.LoginResponse, error) {
	a, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.Wrap(xerrors.ErrUnauthorized, "invalid email or password")
		}
		return nil, err
	}
	if !a.IsActive {
		return nil, xerrors.Wrap(xerrors.ErrForbidden, "account is disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)); err != nil {
		return nil, xerrors.Wrap(xerrors.ErrUnauthorized, "invalid email or password")
	}

	token, expiresAt, err := s.tokens.Generate(a)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateLastLogin(ctx, a.ID, s.now()); err != nil {
		s.logger.Warn("failed to stamp last login", zap.Int64("admin_id", a.ID), zap.Error(err))
	}

	s.logger.Info("admin logged in", zap.String("email", a.Email))
	return &admin.LoginResponse{Token: token, ExpiresAt: expiresAt, Admin: a}, nil
}

// ValidateToken parses an access token and loads the admin it names.
// Disabled accounts fail validation even with a live token.
func (s *Service) ValidateToken(ctx context.Context, token string) (*admin.Admin, *jwt.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, nil, xerrors.Wrap(xerrors.ErrUnauthorized, "invalid or expired token")
	}

	a, err := s.repo.FindByID(ctx, claims.AdminID)
	if err != nil {
		return nil, nil, xerrors.Wrap(xerrors.ErrUnauthorized, "account no longer exists")
	}
	if !a.IsActive {
		return nil, nil, xerrors.Wrap(xerrors.ErrForbidden, "account is disabled")
	}
	return a, claims, nil
}

// CreateAdmin provisions a new admin account.
func (s *Service) CreateAdmin(ctx context.Context, req *admin.CreateAdminRequest) (*admin.Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to hash password")
	}

	a := &admin.Admin{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.repo.CreateAdmin(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("admin created", zap.String("email", a.Email), zap.String("role", string(a.Role)))
	return a, nil
}

// EnsureSuperAdmin bootstraps the first super admin from configuration
// when none exists yet. Called once at startup.
func (s *Service) EnsureSuperAdmin(ctx context.Context, email, password, fullName string) error {
	exists, err := s.repo.SuperAdminExists(ctx)
	if err != nil {
		return err
	}
	if exists || email == "" || password == "" {
		return nil
	}

	_, err = s.CreateAdmin(ctx, &admin.CreateAdminRequest{
		Email:    email,
		Password: password,
		FullName: fullName,
		Role:     admin.RoleSuperAdmin,
	})
	if err != nil && !xerrors.Is(err, xerrors.ErrConflict) {
		return err
	}
	if err == nil {
		s.logger.Info("bootstrap super admin created", zap.String("email", email))
	}
	return nil
}
