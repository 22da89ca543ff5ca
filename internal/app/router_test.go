package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crm-service/internal/domain/customer"
	authHandler "crm-service/internal/handlers/auth"
	customerHandler "crm-service/internal/handlers/customer"
	outletHandler "crm-service/internal/handlers/outlet"
	wsHandler "crm-service/internal/handlers/websocket"
	xilnexHandler "crm-service/internal/handlers/xilnex"
	"crm-service/internal/middleware"
	"crm-service/internal/pkg/jwt"
	authUsecase "crm-service/internal/service/auth"
	customersvc "crm-service/internal/service/customer"
	outletsvc "crm-service/internal/service/outlet"
	"crm-service/internal/service/xilnex"
	"crm-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type noopCustomers struct{}

func (noopCustomers) CreateCustomer(context.Context, *customer.CreateCustomerRequest) (*customersvc.CreateResult, error) {
	return &customersvc.CreateResult{}, nil
}
func (noopCustomers) CreateContact(context.Context, *customer.CreateCustomerRequest) (*customer.Customer, error) {
	return &customer.Customer{}, nil
}
func (noopCustomers) GetCustomer(_ context.Context, id string) (*customer.Customer, error) {
	return &customer.Customer{ID: id}, nil
}
func (noopCustomers) ListCustomers(context.Context, customer.ListFilters) (*customer.ListResponse, error) {
	return &customer.ListResponse{}, nil
}
func (noopCustomers) UpdateCustomer(_ context.Context, id string, _ *customer.UpdateCustomerRequest) (*customer.Customer, error) {
	return &customer.Customer{ID: id}, nil
}
func (noopCustomers) DeleteCustomer(context.Context, string) error { return nil }
func (noopCustomers) GetStats(context.Context) (*customer.Stats, error) {
	return &customer.Stats{}, nil
}
func (noopCustomers) ResyncPending(context.Context, int, int) (*customersvc.ResyncSummary, error) {
	return &customersvc.ResyncSummary{}, nil
}

type failingPing struct{ err error }

func (p failingPing) Ping(context.Context) error { return p.err }

func newTestEngine(t *testing.T, health Pinger) (*gin.Engine, *jwt.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mgr, err := jwt.NewManager(jwt.Config{Secret: "router-secret", Issuer: "crm-test", TTL: time.Hour})
	require.NoError(t, err)

	logger := zap.NewNop()
	hub := websocket.NewHub(mgr.Verifier, logger)
	xc := xilnex.NewClient(xilnex.Config{}, nil, logger)

	r := gin.New()
	SetupRouter(r, &Handlers{
		AuthHandler:     authHandler.NewAuthHandler(authUsecase.NewAuthService(nil, mgr, logger), logger),
		CustomerHandler: customerHandler.NewCustomerHandler(noopCustomers{}, 5, logger),
		OutletHandler:   outletHandler.NewOutletHandler(outletsvc.NewOutletService(nil, logger), logger),
		XilnexHandler:   xilnexHandler.NewXilnexHandler(xc),
		WSHandler:       wsHandler.NewWebSocketHandler(hub, "", logger),
		AuthMiddleware:  middleware.NewAuthMiddleware(mgr.Verifier),
		Health:          health,
	})
	return r, mgr
}

func request(r http.Handler, method, path, token string) int {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRouter_Health(t *testing.T) {
	r, _ := newTestEngine(t, nil)
	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/api/v1/health", ""))

	r, _ = newTestEngine(t, failingPing{err: assert.AnError})
	assert.Equal(t, http.StatusServiceUnavailable, request(r, http.MethodGet, "/api/v1/health", ""))
}

func TestRouter_Access(t *testing.T) {
	r, mgr := newTestEngine(t, nil)

	userToken, _, err := mgr.Generator.Generate("u1", "staff@example.com", "user")
	require.NoError(t, err)
	adminToken, _, err := mgr.Generator.Generate("a1", "admin@example.com", "admin")
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"customers need a token", http.MethodGet, "/api/v1/customers", "", http.StatusUnauthorized},
		{"staff can list customers", http.MethodGet, "/api/v1/customers", userToken, http.StatusOK},
		{"staff can read stats", http.MethodGet, "/api/v1/customers/stats/overview", userToken, http.StatusOK},
		{"contacts need a token", http.MethodPost, "/api/v1/contacts", "", http.StatusUnauthorized},
		{"resync is admin only", http.MethodPost, "/api/v1/customers/sync", userToken, http.StatusForbidden},
		{"admin can resync", http.MethodPost, "/api/v1/customers/sync", adminToken, http.StatusOK},
		{"xilnex status", http.MethodGet, "/api/v1/xilnex/status", userToken, http.StatusOK},
		{"xilnex clients admin only", http.MethodGet, "/api/v1/xilnex/clients/X1", userToken, http.StatusForbidden},
		{"xilnex disabled answers 503", http.MethodGet, "/api/v1/xilnex/clients/X1", adminToken, http.StatusServiceUnavailable},
		{"users admin only", http.MethodGet, "/api/v1/users", userToken, http.StatusForbidden},
		{"websocket needs a token", http.MethodGet, "/ws", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, request(r, tt.method, tt.path, tt.token))
		})
	}
}
