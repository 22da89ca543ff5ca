// internal/service/outlet/outlet.go
package outlet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crm-service/internal/domain/outlet"
	xerrors "crm-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// DefaultOutletName is reported for an empty outlet code.
const DefaultOutletName = "Default Outlet"

type Repository interface {
	Create(ctx context.Context, o *outlet.Outlet) error
	Upsert(ctx context.Context, o *outlet.Outlet) error
	FindByID(ctx context.Context, id string) (*outlet.Outlet, error)
	FindByCode(ctx context.Context, code string) (*outlet.Outlet, error)
	Update(ctx context.Context, o *outlet.Outlet) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f outlet.ListFilters) ([]outlet.Outlet, error)
	GetStats(ctx context.Context) (*outlet.Stats, error)
}

type OutletService struct {
	repo   Repository
	logger *zap.Logger
}

func NewOutletService(repo Repository, logger *zap.Logger) *OutletService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutletService{repo: repo, logger: logger}
}

// OutletName resolves a code to the outlet's name. Lookup failures degrade to
// the code itself, or DefaultOutletName when the code is empty.
func (s *OutletService) OutletName(ctx context.Context, code string) string {
	if code == "" {
		return DefaultOutletName
	}

	o, err := s.repo.FindByCode(ctx, normalizeCode(code))
	if err != nil {
		if !errors.Is(err, xerrors.ErrNotFound) {
			s.logger.Warn("outlet lookup failed", zap.String("code", code), zap.Error(err))
		}
		return code
	}
	return o.Name
}

// Exists reports whether an outlet with the code is known.
func (s *OutletService) Exists(ctx context.Context, code string) (bool, error) {
	_, err := s.repo.FindByCode(ctx, normalizeCode(code))
	if errors.Is(err, xerrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up outlet: %w", err)
	}
	return true, nil
}

func (s *OutletService) CreateOutlet(ctx context.Context, req *outlet.CreateOutletRequest) (*outlet.Outlet, error) {
	now := time.Now().UTC()
	o := &outlet.Outlet{
		ID:          ulid.Make().String(),
		Name:        strings.TrimSpace(req.Name),
		Code:        normalizeCode(req.Code),
		Description: strings.TrimSpace(req.Description),
		Address:     req.Address,
		Phone:       strings.TrimSpace(req.Phone),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Manager:     strings.TrimSpace(req.Manager),
		Status:      req.Status,
		Type:        req.Type,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := applyDefaultsAndValidate(o); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, o); err != nil {
		if errors.Is(err, outlet.ErrDuplicateCode) {
			return nil, err
		}
		s.logger.Error("failed to create outlet", zap.String("code", o.Code), zap.Error(err))
		return nil, fmt.Errorf("failed to create outlet: %w", err)
	}

	s.logger.Info("outlet created", zap.String("outlet_id", o.ID), zap.String("code", o.Code))
	return o, nil
}

func (s *OutletService) GetOutlet(ctx context.Context, id string) (*outlet.Outlet, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *OutletService) ListOutlets(ctx context.Context, f outlet.ListFilters) ([]outlet.Outlet, error) {
	return s.repo.List(ctx, f)
}

func (s *OutletService) UpdateOutlet(ctx context.Context, id string, req *outlet.UpdateOutletRequest) (*outlet.Outlet, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		o.Name = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil {
		o.Code = normalizeCode(*req.Code)
	}
	if req.Description != nil {
		o.Description = strings.TrimSpace(*req.Description)
	}
	if req.Address != nil {
		o.Address = *req.Address
	}
	if req.Phone != nil {
		o.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		o.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Manager != nil {
		o.Manager = strings.TrimSpace(*req.Manager)
	}
	if req.Status != nil {
		o.Status = *req.Status
	}
	if req.Type != nil {
		o.Type = *req.Type
	}

	if err := applyDefaultsAndValidate(o); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("outlet updated", zap.String("outlet_id", o.ID), zap.String("code", o.Code))
	return o, nil
}

func (s *OutletService) DeleteOutlet(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("outlet deleted", zap.String("outlet_id", id))
	return nil
}

func (s *OutletService) GetStats(ctx context.Context) (*outlet.Stats, error) {
	return s.repo.GetStats(ctx)
}

// Seed inserts or refreshes each outlet by code.
func (s *OutletService) Seed(ctx context.Context, outlets []outlet.Outlet) error {
	now := time.Now().UTC()
	for i := range outlets {
		o := outlets[i]
		o.ID = ulid.Make().String()
		o.Code = normalizeCode(o.Code)
		o.CreatedAt, o.UpdatedAt = now, now
		if err := applyDefaultsAndValidate(&o); err != nil {
			return fmt.Errorf("outlet %s: %w", o.Code, err)
		}
		if err := s.repo.Upsert(ctx, &o); err != nil {
			return err
		}
		s.logger.Info("outlet seeded", zap.String("outlet", o.DisplayName()))
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func applyDefaultsAndValidate(o *outlet.Outlet) error {
	if o.Status == "" {
		o.Status = outlet.StatusActive
	}
	if o.Type == "" {
		o.Type = outlet.TypeStore
	}

	switch {
	case o.Name == "":
		return xerrors.Wrap(xerrors.ErrInvalidInput, "outlet name is required")
	case o.Code == "":
		return xerrors.Wrap(xerrors.ErrInvalidInput, "outlet code is required")
	case !o.Status.Valid():
		return xerrors.Wrap(xerrors.ErrInvalidInput, fmt.Sprintf("invalid outlet status %q", o.Status))
	case !o.Type.Valid():
		return xerrors.Wrap(xerrors.ErrInvalidInput, fmt.Sprintf("invalid outlet type %q", o.Type))
	}
	return nil
}
