// internal/service/auth/admin_create.go
package auth

import (
	"context"
	"errors"
	"fmt"

	"crm-service/internal/domain/user"
	xerrors "crm-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// EnsureAdminExists creates the bootstrap admin, or promotes the account if the
// email is already registered with a lesser role.
func (s *AuthService) EnsureAdminExists(ctx context.Context, email, password, name string) error {
	if email == "" || password == "" {
		return fmt.Errorf("admin email and password must be provided via environment variables")
	}
	if name == "" {
		name = "Administrator"
	}

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == user.RoleAdmin {
			s.logger.Info("admin already exists, skipping creation", zap.String("email", existing.Email))
			return nil
		}
		if err := s.users.SetRole(ctx, existing.ID, user.RoleAdmin); err != nil {
			return fmt.Errorf("failed to promote %s: %w", email, err)
		}
		s.logger.Info("existing user promoted to admin", zap.String("user_id", existing.ID))
		return nil
	case !errors.Is(err, xerrors.ErrNotFound):
		return fmt.Errorf("failed to check admin: %w", err)
	}

	u := &user.User{Name: name, Email: email, Role: user.RoleAdmin}
	if err := s.createUser(ctx, u, password); err != nil {
		return err
	}

	s.logger.Info("admin created successfully",
		zap.String("email", u.Email),
		zap.String("user_id", u.ID),
	)
	return nil
}
