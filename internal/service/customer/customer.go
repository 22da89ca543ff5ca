// internal/service/customer/customer.go
package customer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm-service/internal/domain/customer"
	wsdomain "crm-service/internal/domain/websocket"
	xerrors "crm-service/internal/pkg/errors"
	"crm-service/internal/pkg/lock"
	"crm-service/internal/service/xilnex"

	"github.com/lib/pq"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// provisionalID stands in for the local id during the external call. It
	// carries no digits, so the client code falls back to the sentinel.
	provisionalID = "provisional"

	creationLockTTL = 2 * time.Minute

	DefaultListLimit = 25
	MaxListLimit     = 100
)

type Repository interface {
	Create(ctx context.Context, c *customer.Customer) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindByID(ctx context.Context, id string) (*customer.Customer, error)
	Update(ctx context.Context, c *customer.Customer) error
	UpdateSyncState(ctx context.Context, c *customer.Customer) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f customer.ListFilters) ([]customer.Customer, int64, error)
	ListUnsynced(ctx context.Context, limit int) ([]*customer.Customer, error)
	GetStats(ctx context.Context) (*customer.Stats, error)
}

// Syncer is the part of the xilnex client the workflow depends on.
type Syncer interface {
	SyncContact(ctx context.Context, contact *customer.Customer) *xilnex.Result
	BatchSyncContacts(ctx context.Context, contacts []*customer.Customer, batchSize int) []xilnex.BatchResult
}

// OutletChecker guards outlet changes on edit. Creation accepts any code; the
// sync transform falls back to the code when the outlet is unknown.
type OutletChecker interface {
	Exists(ctx context.Context, code string) (bool, error)
}

type EventPublisher interface {
	Broadcast(msg *wsdomain.WSMessage)
}

// CreateResult is a persisted customer together with the sync outcome that
// allowed it.
type CreateResult struct {
	Customer *customer.Customer `json:"customer"`
	Sync     *xilnex.Result     `json:"xilnexSync"`
}

type CustomerService struct {
	repo    Repository
	syncer  Syncer
	outlets OutletChecker
	locker  lock.Locker
	events  EventPublisher
	logger  *zap.Logger
	now     func() time.Time
}

func NewCustomerService(
	repo Repository,
	syncer Syncer,
	outlets OutletChecker,
	locker lock.Locker,
	events EventPublisher,
	logger *zap.Logger,
) *CustomerService {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{
		repo:    repo,
		syncer:  syncer,
		outlets: outlets,
		locker:  locker,
		events:  events,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateCustomer registers the customer with Xilnex first and stores it only
// when that succeeded or the integration is disabled. A rejected sync leaves
// nothing behind locally and comes back as *SyncError.
func (s *CustomerService) CreateCustomer(ctx context.Context, req *customer.CreateCustomerRequest) (*CreateResult, error) {
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

	res := s.syncer.SyncContact(ctx, c)
	if res == nil || res.Failed() {
		if res == nil {
			res = &xilnex.Result{Error: "xilnex sync returned no result"}
		}
		s.logger.Warn("xilnex sync failed, customer not created",
			zap.String("email", c.Email),
			zap.String("outlet", c.Outlet),
			zap.Int("status_code", res.StatusCode),
			zap.String("error", res.Error),
		)
		s.publish(wsdomain.EventTypeCustomerSyncFailed, wsdomain.SyncFailedData{
			Email:      c.Email,
			Outlet:     c.Outlet,
			Error:      res.Error,
			StatusCode: res.StatusCode,
		})
		return nil, &SyncError{Result: res}
	}

	c.ID = ulid.Make().String()
	switch {
	case res.Skipped:
		c.SyncStatus = customer.SyncDisabled
	case res.ClientID != "":
		c.MarkSynced(res.ClientID, s.now())
	default:
		// accepted upstream without an id; left for the batch resync
		c.SyncStatus = customer.SyncPending
	}

	if err := s.repo.Create(ctx, c); err != nil {
		if res.ClientID != "" {
			s.logger.Warn("customer registered with xilnex but not stored locally",
				zap.String("email", c.Email),
				zap.String("xilnex_client_id", res.ClientID),
				zap.Error(err),
			)
		}
		if errors.Is(err, customer.ErrDuplicateEmail) || errors.Is(err, customer.ErrDuplicateExternalID) {
			return nil, err
		}
		s.logger.Error("failed to create customer", zap.String("email", c.Email), zap.Error(err))
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.logger.Info("customer created",
		zap.String("customer_id", c.ID),
		zap.String("outlet", c.Outlet),
		zap.String("sync_status", string(c.SyncStatus)),
	)
	s.publish(wsdomain.EventTypeCustomerCreated, c)

	return &CreateResult{Customer: c, Sync: res}, nil
}

// lockEmail serializes creation per email. A lock backend failure is logged
// and creation continues; the unique email constraint still guards the write.
func (s *CustomerService) lockEmail(ctx context.Context, email string) (func(), error) {
	release, err := s.locker.Acquire(ctx, "customer:create:"+email, creationLockTTL)
	switch {
	case errors.Is(err, lock.ErrNotAcquired):
		return nil, ErrCreationInProgress
	case err != nil:
		s.logger.Warn("creation lock unavailable, continuing without it",
			zap.String("email", email), zap.Error(err))
		return func() {}, nil
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := release(releaseCtx); err != nil {
			s.logger.Warn("failed to release creation lock", zap.String("email", email), zap.Error(err))
		}
	}, nil
}

func (s *CustomerService) ensureEmailFree(ctx context.Context, email string) error {
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check customer existence: %w", err)
	}
	if exists {
		return customer.ErrDuplicateEmail
	}
	return nil
}

func (s *CustomerService) buildProvisional(req *customer.CreateCustomerRequest) *customer.Customer {
	now := s.now()

	c := &customer.Customer{
		ID:               provisionalID,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Phone:            req.Phone,
		Company:          req.Company,
		Position:         req.Position,
		Status:           req.Status,
		Source:           req.Source,
		Outlet:           req.Outlet,
		Address:          req.Address,
		Notes:            req.Notes,
		Tags:             pq.StringArray(req.Tags),
		CustomerType:     req.CustomerType,
		RegistrationDate: now,
		SyncStatus:       customer.SyncPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if req.DealValue != nil {
		c.DealValue = *req.DealValue
	} else {
		c.DealValue = decimal.Zero
	}
	if c.Status == "" {
		c.Status = customer.StatusCustomer
	}
	if c.Source == "" {
		c.Source = customer.SourceWebsite
	}
	if c.CustomerType == "" {
		c.CustomerType = customer.TypeIndividual
	}
	return c
}

func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*customer.Customer, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CustomerService) ListCustomers(ctx context.Context, f customer.ListFilters) (*customer.ListResponse, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}

	customers, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	pages := int(total) / f.Limit
	if int(total)%f.Limit > 0 {
		pages++
	}

	return &customer.ListResponse{
		Customers: customers,
		Total:     total,
		Page:      f.Page,
		Limit:     f.Limit,
		Pages:     pages,
	}, nil
}

// UpdateCustomer applies direct field edits. It never touches sync metadata
// and never calls Xilnex.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id string, req *customer.UpdateCustomerRequest) (*customer.Customer, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		c.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		c.LastName = *req.LastName
	}
	if req.Email != nil {
		c.Email = normalizeEmail(*req.Email)
	}
	if req.Outlet != nil {
		c.Outlet = normalizeOutlet(*req.Outlet)
	}
	if req.Phone != nil {
		c.Phone = *req.Phone
	}
	if req.Company != nil {
		c.Company = *req.Company
	}
	if req.Position != nil {
		c.Position = *req.Position
	}
	if req.Status != nil {
		c.Status = *req.Status
	}
	if req.Source != nil {
		c.Source = *req.Source
	}
	if req.Address != nil {
		c.Address = *req.Address
	}
	if req.Notes != nil {
		c.Notes = *req.Notes
	}
	if req.Tags != nil {
		c.Tags = pq.StringArray(cleanTags(req.Tags))
	}
	if req.DealValue != nil {
		c.DealValue = *req.DealValue
	}
	if req.CustomerType != nil {
		c.CustomerType = *req.CustomerType
	}

	if err := validateRecord(c); err != nil {
		return nil, err
	}

	if req.Outlet != nil {
		known, err := s.outlets.Exists(ctx, c.Outlet)
		if err != nil {
			return nil, fmt.Errorf("failed to check outlet: %w", err)
		}
		if !known {
			return nil, &ValidationError{Fields: map[string]string{"outlet": fmt.Sprintf("unknown outlet %q", c.Outlet)}}
		}
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("customer updated", zap.String("customer_id", c.ID))
	return c, nil
}

// DeleteCustomer removes the local record only; the external record stays.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, xerrors.ErrNotFound) {
			s.logger.Error("failed to delete customer", zap.String("customer_id", id), zap.Error(err))
		}
		return err
	}
	s.logger.Info("customer deleted", zap.String("customer_id", id))
	return nil
}

func (s *CustomerService) GetStats(ctx context.Context) (*customer.Stats, error) {
	return s.repo.GetStats(ctx)
}

func (s *CustomerService) publish(eventType wsdomain.EventType, data interface{}) {
	if s.events == nil {
		return
	}
	s.events.Broadcast(wsdomain.NewMessage(eventType, data))
}
