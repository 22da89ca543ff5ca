// internal/service/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crm-service/internal/domain/user"
	xerrors "crm-service/internal/pkg/errors"
	"crm-service/internal/pkg/jwt"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers unknown email, wrong password and inactive
// accounts alike.
var ErrInvalidCredentials = errors.New("invalid email or password")

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	FindByID(ctx context.Context, id string) (*user.User, error)
	SetRole(ctx context.Context, id string, role user.Role) error
	List(ctx context.Context, f user.ListFilters) ([]user.User, error)
}

type AuthService struct {
	users      UserRepository
	jwtManager *jwt.Manager
	logger     *zap.Logger
	hashCost   int
}

func NewAuthService(users UserRepository, jwtManager *jwt.Manager, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      users,
		jwtManager: jwtManager,
		logger:     logger,
		hashCost:   bcrypt.DefaultCost,
	}
}

// ========== Registration ==========

// Register creates a staff account with the user role and logs it in.
func (s *AuthService) Register(ctx context.Context, req *user.RegisterRequest) (*user.AuthResponse, error) {
	u := &user.User{
		Name:       req.Name,
		Email:      req.Email,
		Role:       user.RoleUser,
		Department: strings.TrimSpace(req.Department),
		Phone:      strings.TrimSpace(req.Phone),
	}
	if err := s.createUser(ctx, u, req.Password); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", u.ID), zap.String("email", u.Email))
	return s.issue(u)
}

// createUser hashes the password and stores u with fresh id and timestamps.
func (s *AuthService) createUser(ctx context.Context, u *user.User, password string) error {
	if len(password) < 6 {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "password must be at least 6 characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	u.ID = ulid.Make().String()
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.PasswordHash = string(hashed)
	u.IsActive = true
	u.CreatedAt = now
	u.UpdatedAt = now

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return err
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// ========== Login ==========

func (s *AuthService) Login(ctx context.Context, req *user.LoginRequest) (*user.AuthResponse, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("login rejected", zap.String("email", u.Email), zap.String("reason", "password"))
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		s.logger.Info("login rejected", zap.String("email", u.Email), zap.String("reason", "inactive"))
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("user logged in", zap.String("user_id", u.ID))
	return s.issue(u)
}

func (s *AuthService) issue(u *user.User) (*user.AuthResponse, error) {
	token, expiresAt, err := s.jwtManager.Generator.Generate(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &user.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		User:      u,
	}, nil
}

// ========== Profile ==========

func (s *AuthService) Me(ctx context.Context, userID string) (*user.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) ListUsers(ctx context.Context, f user.ListFilters) ([]user.User, error) {
	return s.users.List(ctx, f)
}
