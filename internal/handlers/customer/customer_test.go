package customer

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"crm-service/internal/domain/customer"
	xerrors "crm-service/internal/pkg/errors"
	service "crm-service/internal/service/customer"
	"crm-service/internal/service/xilnex"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubService struct {
	createErr   error
	created     *service.CreateResult
	getErr      error
	resyncLimit int
	resyncBatch int
}

func (s *stubService) CreateCustomer(_ context.Context, req *customer.CreateCustomerRequest) (*service.CreateResult, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.created != nil {
		return s.created, nil
	}
	return &service.CreateResult{
		Customer: &customer.Customer{ID: "c1", FirstName: req.FirstName, LastName: req.LastName, Email: req.Email},
		Sync:     &xilnex.Result{Success: true, ClientID: "X-1"},
	}, nil
}

func (s *stubService) CreateContact(_ context.Context, req *customer.CreateCustomerRequest) (*customer.Customer, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &customer.Customer{ID: "c2", Email: req.Email, SyncStatus: customer.SyncPending}, nil
}

func (s *stubService) GetCustomer(_ context.Context, id string) (*customer.Customer, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &customer.Customer{ID: id}, nil
}

func (s *stubService) ListCustomers(_ context.Context, f customer.ListFilters) (*customer.ListResponse, error) {
	return &customer.ListResponse{Customers: []customer.Customer{}, Page: f.Page, Limit: f.Limit}, nil
}

func (s *stubService) UpdateCustomer(_ context.Context, id string, _ *customer.UpdateCustomerRequest) (*customer.Customer, error) {
	return &customer.Customer{ID: id}, nil
}

func (s *stubService) DeleteCustomer(_ context.Context, _ string) error {
	return s.getErr
}

func (s *stubService) GetStats(_ context.Context) (*customer.Stats, error) {
	return &customer.Stats{Total: 3}, nil
}

func (s *stubService) ResyncPending(_ context.Context, limit, batchSize int) (*service.ResyncSummary, error) {
	s.resyncLimit = limit
	s.resyncBatch = batchSize
	return &service.ResyncSummary{}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestRouter(svc Service) *gin.Engine {
	h := NewCustomerHandler(svc, 5, zap.NewNop())
	r := gin.New()
	r.POST("/customers", h.CreateCustomer)
	r.POST("/contacts", h.CreateContact)
	r.GET("/customers", h.ListCustomers)
	r.GET("/customers/stats/overview", h.GetStats)
	r.GET("/customers/:id", h.GetCustomer)
	r.DELETE("/customers/:id", h.DeleteCustomer)
	r.POST("/customers/sync", h.SyncPending)
	return r
}

func perform(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

var anaBody = map[string]interface{}{
	"firstName": "Ana",
	"lastName":  "Lim",
	"email":     "ana@example.com",
	"outlet":    "MAIN",
}

func TestCreateCustomer_Created(t *testing.T) {
	w, env := perform(t, newTestRouter(&stubService{}), http.MethodPost, "/customers", anaBody)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)

	var data struct {
		Customer struct {
			ID       string `json:"id"`
			FullName string `json:"fullName"`
		} `json:"customer"`
		Sync struct {
			Success  bool   `json:"success"`
			ClientID string `json:"xilnexClientId"`
		} `json:"xilnexSync"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "c1", data.Customer.ID)
	assert.Equal(t, "Ana Lim", data.Customer.FullName)
	assert.True(t, data.Sync.Success)
	assert.Equal(t, "X-1", data.Sync.ClientID)
}

func TestCreateCustomer_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &service.ValidationError{Fields: map[string]string{"email": "must be a valid email"}}, http.StatusBadRequest},
		{"sync failure", &service.SyncError{Result: &xilnex.Result{Error: "Invalid email", StatusCode: 422}}, http.StatusBadRequest},
		{"duplicate email", customer.ErrDuplicateEmail, http.StatusConflict},
		{"in progress", service.ErrCreationInProgress, http.StatusConflict},
		{"storage", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := perform(t, newTestRouter(&stubService{createErr: tt.err}), http.MethodPost, "/customers", anaBody)
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestCreateCustomer_SyncFailureFlag(t *testing.T) {
	svc := &stubService{createErr: &service.SyncError{Result: &xilnex.Result{Error: "Invalid email", StatusCode: 422}}}
	_, env := perform(t, newTestRouter(svc), http.MethodPost, "/customers", anaBody)

	var data struct {
		SyncFailed  bool `json:"syncFailed"`
		XilnexError struct {
			Error      string `json:"error"`
			StatusCode int    `json:"statusCode"`
		} `json:"xilnexError"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, data.SyncFailed)
	assert.Equal(t, "Invalid email", data.XilnexError.Error)
	assert.Equal(t, 422, data.XilnexError.StatusCode)
	assert.Contains(t, env.Error, "Invalid email")
}

func TestCreateCustomer_ValidationFields(t *testing.T) {
	svc := &stubService{createErr: &service.ValidationError{Fields: map[string]string{"outlet": "is required"}}}
	_, env := perform(t, newTestRouter(svc), http.MethodPost, "/customers", anaBody)

	var fields map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &fields))
	assert.Equal(t, "is required", fields["outlet"])
}

func TestCreateCustomer_MalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newTestRouter(&stubService{}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateContact(t *testing.T) {
	w, env := perform(t, newTestRouter(&stubService{}), http.MethodPost, "/contacts", anaBody)

	assert.Equal(t, http.StatusCreated, w.Code)
	var data struct {
		ID         string `json:"id"`
		SyncStatus string `json:"syncStatus"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "c2", data.ID)
	assert.Equal(t, "pending", data.SyncStatus)

	w, _ = perform(t, newTestRouter(&stubService{createErr: customer.ErrDuplicateEmail}), http.MethodPost, "/contacts", anaBody)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetCustomer_NotFound(t *testing.T) {
	w, _ := perform(t, newTestRouter(&stubService{getErr: xerrors.ErrNotFound}), http.MethodGet, "/customers/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = perform(t, newTestRouter(&stubService{getErr: xerrors.ErrNotFound}), http.MethodDelete, "/customers/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatsRouteIsNotShadowedByID(t *testing.T) {
	w, env := perform(t, newTestRouter(&stubService{}), http.MethodGet, "/customers/stats/overview", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":3,"byStatus":null,"bySyncStatus":null}`, string(env.Data))
}

func TestSyncPending(t *testing.T) {
	svc := &stubService{}
	r := newTestRouter(svc)

	w, _ := perform(t, r, http.MethodPost, "/customers/sync", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.DefaultResyncLimit, svc.resyncLimit)
	assert.Equal(t, 5, svc.resyncBatch)

	w, _ = perform(t, r, http.MethodPost, "/customers/sync?limit=10", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, svc.resyncLimit)

	w, _ = perform(t, r, http.MethodPost, "/customers/sync?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
