package service

import (
	"context"
	"time"

	"github.com/spec-kit/sla-engine/internal/auth"
	"github.com/spec-kit/sla-engine/internal/config"
	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/repository"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

// AuthService coordinates staff login for the admin API.
type AuthService struct {
	staff      repository.StaffRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, staffRepo repository.StaffRepository) *AuthService {
	return &AuthService{
		staff:      staffRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// LoginStaff authenticates staff and returns a role-bearing token.
func (s *AuthService) LoginStaff(ctx context.Context, email, password string) (*domain.StaffMember, string, time.Time, error) {
	staff, err := s.staff.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if !staff.Active {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("staff inactive")
	}
	if err := auth.ComparePassword(staff.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(staff.ID, staff.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return staff, token, exp, nil
}

// ChangePassword verifies the current password before updating to a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, staffID, currentPassword, newPassword string) error {
	staff, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(staff.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	staff.PasswordHash = hash
	return s.staff.Update(ctx, staff)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
