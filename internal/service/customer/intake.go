// internal/service/customer/intake.go
package customer

import (
	"context"
	"errors"
	"fmt"

	"crm-service/internal/domain/customer"
	wsdomain "crm-service/internal/domain/websocket"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// CreateContact stores a customer as pending without calling Xilnex. The
// record is picked up later by ResyncPending.
func (s *CustomerService) CreateContact(ctx context.Context, req *customer.CreateCustomerRequest) (*customer.Customer, error) {
	normalizeCreate(req)
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	unlock, err := s.lockEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := s.ensureEmailFree(ctx, req.Email); err != nil {
		return nil, err
	}

	c := s.buildProvisional(req)
	c.ID = ulid.Make().String()
	c.SyncStatus = customer.SyncPending

	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, customer.ErrDuplicateEmail) {
			return nil, err
		}
		s.logger.Error("failed to store contact", zap.String("email", c.Email), zap.Error(err))
		return nil, fmt.Errorf("failed to store contact: %w", err)
	}

	s.logger.Info("contact stored for later sync",
		zap.String("customer_id", c.ID),
		zap.String("outlet", c.Outlet),
	)
	s.publish(wsdomain.EventTypeCustomerCreated, c)

	return c, nil
}
