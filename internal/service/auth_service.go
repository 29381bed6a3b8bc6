package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/auth"
	"github.com/spec-kit/helpdesk-sla/internal/config"
	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-sla/pkg/util/errorutil"
)

// AuthService coordinates technician accounts and login.
type AuthService struct {
	technicians repository.TechnicianRepository
	tokenMgr    *auth.TokenManager
	bcryptCost  int
	logger      *zap.Logger
}

// TechnicianInput describes a new technician account.
type TechnicianInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.TechnicianRole
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, technicians repository.TechnicianRepository, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		technicians: technicians,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.App.Name, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost:  cfg.Auth.BcryptCost,
		logger:      logger,
	}
}

// TokenManager exposes the token manager for the auth middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// LoginTechnician authenticates a technician and returns a role-bearing token.
// Unknown email, wrong password and inactive accounts look the same to the caller.
func (s *AuthService) LoginTechnician(ctx context.Context, email, password string) (*domain.Technician, string, time.Time, error) {
	invalid := apperrors.NewUnauthorized("invalid credentials")

	tech, err := s.technicians.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, invalid
		}
		return nil, "", time.Time{}, err
	}
	if !tech.Active {
		return nil, "", time.Time{}, invalid
	}
	if err := auth.ComparePassword(tech.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, invalid
	}
	token, exp, err := s.tokenMgr.GenerateToken(tech.ID, tech.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return tech, token, exp, nil
}

// CreateTechnician registers a technician account.
func (s *AuthService) CreateTechnician(ctx context.Context, input TechnicianInput) (*domain.Technician, error) {
	details := map[string]any{}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "required"
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(input.Email)); err != nil {
		details["email"] = "must be a valid email address"
	}
	if len(input.Password) < 8 {
		details["password"] = "must be at least 8 characters"
	}
	if input.Role == "" {
		input.Role = domain.TechnicianRoleAgent
	}
	if input.Role != domain.TechnicianRoleAgent && input.Role != domain.TechnicianRoleAdmin {
		details["role"] = "must be TECHNICIAN or ADMIN"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid technician", details)
	}

	if _, err := s.technicians.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": input.Email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	tech := &domain.Technician{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		Role:         input.Role,
		Active:       true,
	}
	if err := s.technicians.Create(ctx, tech); err != nil {
		return nil, err
	}
	return tech, nil
}

// ListTechnicians returns technicians, newest first.
func (s *AuthService) ListTechnicians(ctx context.Context, filter repository.TechnicianFilter) ([]domain.Technician, error) {
	return s.technicians.List(ctx, filter)
}

// EnsureBootstrapAdmin creates the first admin from configuration when the
// email is set and unknown. It reports whether an account was created.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, cfg config.AuthConfig) (bool, error) {
	if cfg.BootstrapAdminEmail == "" || cfg.BootstrapAdminPassword == "" {
		return false, nil
	}
	if _, err := s.technicians.GetByEmail(ctx, cfg.BootstrapAdminEmail); err == nil {
		return false, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}
	if _, err := s.CreateTechnician(ctx, TechnicianInput{
		Name:     cfg.BootstrapAdminName,
		Email:    cfg.BootstrapAdminEmail,
		Password: cfg.BootstrapAdminPassword,
		Role:     domain.TechnicianRoleAdmin,
	}); err != nil {
		return false, err
	}
	s.logger.Info("bootstrap admin created", zap.String("email", cfg.BootstrapAdminEmail))
	return true, nil
}
