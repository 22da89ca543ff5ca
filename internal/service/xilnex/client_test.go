package xilnex

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"crm-service/internal/domain/customer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticOutlets map[string]string

func (s staticOutlets) OutletName(_ context.Context, code string) string {
	if name, ok := s[code]; ok {
		return name
	}
	if code == "" {
		return "Default Outlet"
	}
	return code
}

type recordedCall struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

type fakeUpstream struct {
	mu      sync.Mutex
	calls   []recordedCall
	handler func(w http.ResponseWriter, r *http.Request, body []byte)
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone(), Body: body})
	f.mu.Unlock()
	f.handler(w, r, body)
}

func (f *fakeUpstream) Calls() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, body []byte)) (*Client, *fakeUpstream) {
	t.Helper()

	upstream := &fakeUpstream{handler: handler}
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		Enabled:  true,
		BaseURL:  srv.URL,
		AppID:    "app",
		AppToken: "tok",
		Auth:     "secret",
		Timeout:  2 * time.Second,
	}, staticOutlets{"MAIN": "Main Store"}, nil)
	return client, upstream
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func sampleContact() *customer.Customer {
	return &customer.Customer{
		ID:        "provisional",
		FirstName: "Ana",
		LastName:  "Cruz",
		Email:     "ana@x.com",
		Outlet:    "MAIN",
		Status:    customer.StatusCustomer,
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{}, nil, nil)
	assert.Equal(t, DefaultBaseURL, c.cfg.BaseURL)
	assert.Equal(t, DefaultTimeout, c.cfg.Timeout)
	assert.Equal(t, DefaultBatchSize, c.cfg.BatchSize)
	assert.Equal(t, DefaultBatchPause, c.cfg.BatchPause)

	c = NewClient(Config{BaseURL: "http://pos.local/", BatchPause: -1}, nil, nil)
	assert.Equal(t, "http://pos.local", c.cfg.BaseURL)
	assert.Zero(t, c.cfg.BatchPause)

	c = NewClient(Config{BatchPause: 250 * time.Millisecond}, nil, nil)
	assert.Equal(t, 250*time.Millisecond, c.cfg.BatchPause)
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"all set", Config{Enabled: true, AppID: "a", AppToken: "t", Auth: "x"}, true},
		{"flag off", Config{Enabled: false, AppID: "a", AppToken: "t", Auth: "x"}, false},
		{"missing app id", Config{Enabled: true, AppToken: "t", Auth: "x"}, false},
		{"missing token", Config{Enabled: true, AppID: "a", Auth: "x"}, false},
		{"missing auth", Config{Enabled: true, AppID: "a", AppToken: "t"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewClient(tt.cfg, nil, nil).Enabled())
		})
	}
}

func TestMissingCredentials(t *testing.T) {
	c := NewClient(Config{Enabled: true, AppID: "a"}, nil, nil)
	assert.Equal(t, []string{"XILNEX_APPTOKEN", "XILNEX_AUTH"}, c.MissingCredentials())
}

func TestDirectOperations_NotConfigured(t *testing.T) {
	c := NewClient(Config{Enabled: true}, nil, nil)
	ctx := context.Background()

	_, err := c.CreateClient(ctx, sampleContact())
	require.ErrorIs(t, err, ErrNotConfigured)
	_, err = c.UpdateClient(ctx, "1", sampleContact())
	require.ErrorIs(t, err, ErrNotConfigured)
	_, err = c.GetClient(ctx, "1")
	require.ErrorIs(t, err, ErrNotConfigured)
	_, err = c.DeleteClient(ctx, "1")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestCreateClient_Success(t *testing.T) {
	c, upstream := newTestClient(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": "ext-77"})
	})

	res, err := c.CreateClient(context.Background(), sampleContact())
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "ext-77", res.ClientID)

	calls := upstream.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, "/logic/v2/clients", calls[0].Path)
	assert.Equal(t, "app", calls[0].Header.Get("appid"))
	assert.Equal(t, "tok", calls[0].Header.Get("token"))
	assert.Equal(t, "secret", calls[0].Header.Get("auth"))

	var sent ClientRequest
	require.NoError(t, json.Unmarshal(calls[0].Body, &sent))
	assert.Equal(t, "Ana Cruz", sent.Client.Name)
	assert.Equal(t, "Main Store", sent.Client.CreatedOutlet)
	assert.Equal(t, FallbackClientCode, sent.Client.ID)
	assert.True(t, sent.Client.Active)
}

func TestCreateClient_NestedNumericID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
		writeJSON(w, http.StatusCreated, map[string]interface{}{"client": map[string]interface{}{"id": 4521}})
	})

	res, err := c.CreateClient(context.Background(), sampleContact())
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "4521", res.ClientID)
}

func TestCreateClient_UpstreamRejection(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"message": "database unavailable"})
	})

	res, err := c.CreateClient(context.Background(), sampleContact())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.True(t, res.Failed())
	assert.Equal(t, "database unavailable", res.Error)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.JSONEq(t, `{"message":"database unavailable"}`, string(res.Details))
}

func TestCreateClient_NonJSONErrorBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	res, err := c.CreateClient(context.Background(), sampleContact())
	require.NoError(t, err)
	assert.Equal(t, "request failed with status code 502", res.Error)

	_, err = json.Marshal(res)
	require.NoError(t, err)
}

func TestCreateClient_Timeout(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
		time.Sleep(300 * time.Millisecond)
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": "late"})
	})
	c.cfg.Timeout = 50 * time.Millisecond
	c.http.Timeout = 50 * time.Millisecond

	res, err := c.CreateClient(context.Background(), sampleContact())
	require.NoError(t, err)
	assert.True(t, res.Failed())
	assert.NotEmpty(t, res.Error)
	assert.Zero(t, res.StatusCode)
}

func TestUpdateGetDelete_Paths(t *testing.T) {
	c, upstream := newTestClient(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
	})
	ctx := context.Background()

	res, err := c.UpdateClient(ctx, "ext-1", sampleContact())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "ext-1", res.ClientID)

	res, err = c.GetClient(ctx, "ext-1")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.JSONEq(t, `{"ok":true}`, string(res.Data))

	res, err = c.DeleteClient(ctx, "ext-1")
	require.NoError(t, err)
	assert.True(t, res.Success)

	calls := upstream.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, http.MethodPut, calls[0].Method)
	assert.Equal(t, "/clients/ext-1", calls[0].Path)
	assert.Equal(t, http.MethodGet, calls[1].Method)
	assert.Equal(t, "/clients/ext-1", calls[1].Path)
	assert.Equal(t, http.MethodDelete, calls[2].Method)
	assert.Empty(t, calls[2].Body)
}

func TestGetClient_NotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"message": "client not found"})
	})

	res, err := c.GetClient(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "client not found", res.Error)
}
