// internal/handlers/customer/customer_handler.go
package customer

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"crm-service/internal/domain/customer"
	xerrors "crm-service/internal/pkg/errors"
	"crm-service/internal/pkg/response"
	service "crm-service/internal/service/customer"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Service is the customer service surface the handler uses.
type Service interface {
	CreateCustomer(ctx context.Context, req *customer.CreateCustomerRequest) (*service.CreateResult, error)
	CreateContact(ctx context.Context, req *customer.CreateCustomerRequest) (*customer.Customer, error)
	GetCustomer(ctx context.Context, id string) (*customer.Customer, error)
	ListCustomers(ctx context.Context, f customer.ListFilters) (*customer.ListResponse, error)
	UpdateCustomer(ctx context.Context, id string, req *customer.UpdateCustomerRequest) (*customer.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
	GetStats(ctx context.Context) (*customer.Stats, error)
	ResyncPending(ctx context.Context, limit, batchSize int) (*service.ResyncSummary, error)
}

type CustomerHandler struct {
	customerService Service
	batchSize       int
	logger          *zap.Logger
}

func NewCustomerHandler(customerService Service, batchSize int, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		batchSize:       batchSize,
		logger:          logger,
	}
}

// CreateCustomer runs the creation workflow: the customer is stored only when
// Xilnex accepts it or the integration is off.
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req customer.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.customerService.CreateCustomer(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, "failed to create customer", err)
		return
	}

	response.Success(c, http.StatusCreated, "customer created successfully", result)
}

// CreateContact stores an intake record as pending; Xilnex is reached later by
// the batch resync.
func (h *CustomerHandler) CreateContact(c *gin.Context) {
	var req customer.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.customerService.CreateContact(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, "failed to store contact", err)
		return
	}

	response.Success(c, http.StatusCreated, "contact stored, pending xilnex sync", result)
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	result, err := h.customerService.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "failed to get customer", err)
		return
	}

	response.Success(c, http.StatusOK, "customer retrieved", result)
}

// ListCustomers retrieves customers with filters
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	var filters customer.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	result, err := h.customerService.ListCustomers(c.Request.Context(), filters)
	if err != nil {
		h.writeError(c, "failed to list customers", err)
		return
	}

	response.Success(c, http.StatusOK, "customers retrieved", result)
}

// UpdateCustomer edits fields only. Sync metadata cannot be set here.
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	var req customer.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.customerService.UpdateCustomer(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.writeError(c, "failed to update customer", err)
		return
	}

	response.Success(c, http.StatusOK, "customer updated successfully", result)
}

func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	if err := h.customerService.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, "failed to delete customer", err)
		return
	}

	response.Success(c, http.StatusOK, "customer deleted successfully", nil)
}

func (h *CustomerHandler) GetStats(c *gin.Context) {
	stats, err := h.customerService.GetStats(c.Request.Context())
	if err != nil {
		h.writeError(c, "failed to get customer stats", err)
		return
	}

	response.Success(c, http.StatusOK, "customer stats retrieved", stats)
}

// SyncPending pushes pending and failed customers to Xilnex (admin only).
func (h *CustomerHandler) SyncPending(c *gin.Context) {
	limit := service.DefaultResyncLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.Error(c, http.StatusBadRequest, "invalid limit", err)
			return
		}
		limit = n
	}

	summary, err := h.customerService.ResyncPending(c.Request.Context(), limit, h.batchSize)
	if err != nil {
		h.writeError(c, "failed to sync customers", err)
		return
	}

	response.Success(c, http.StatusOK, "customer sync completed", summary)
}

func (h *CustomerHandler) writeError(c *gin.Context, message string, err error) {
	var validationErr *service.ValidationError
	var syncErr *service.SyncError

	switch {
	case errors.As(err, &validationErr):
		response.ValidationError(c, "validation failed", err, validationErr.Fields)
	case errors.As(err, &syncErr):
		response.Error(c, http.StatusBadRequest, "failed to sync customer with Xilnex", err, gin.H{
			"syncFailed":  true,
			"xilnexError": syncErr.Result,
		})
	case errors.Is(err, xerrors.ErrNotFound):
		response.NotFound(c, "customer not found")
	default:
		status := xerrors.HTTPStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
			err = xerrors.ErrInternal
		}
		response.Error(c, status, message, err)
	}
}
