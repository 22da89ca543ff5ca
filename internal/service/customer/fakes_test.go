package customer

import (
	"context"
	"sort"
	"sync"
	"time"

	"crm-service/internal/domain/customer"
	wsdomain "crm-service/internal/domain/websocket"
	xerrors "crm-service/internal/pkg/errors"
	"crm-service/internal/service/xilnex"
)

type memRepo struct {
	mu        sync.Mutex
	byID      map[string]*customer.Customer
	createErr error
	creates   int
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[string]*customer.Customer{}}
}

func (r *memRepo) Create(_ context.Context, c *customer.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.byID {
		if existing.Email == c.Email {
			return customer.ErrDuplicateEmail
		}
	}
	cp := *c
	r.byID[c.ID] = &cp
	return nil
}

func (r *memRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byID {
		if c.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) FindByID(_ context.Context, id string) (*customer.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memRepo) Update(_ context.Context, c *customer.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[c.ID]
	if !ok {
		return xerrors.ErrNotFound
	}
	cp := *c
	cp.ExternalClientID = stored.ExternalClientID
	cp.SyncStatus = stored.SyncStatus
	cp.SyncDate = stored.SyncDate
	cp.SyncError = stored.SyncError
	r.byID[c.ID] = &cp
	return nil
}

func (r *memRepo) UpdateSyncState(_ context.Context, c *customer.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[c.ID]
	if !ok {
		return xerrors.ErrNotFound
	}
	stored.ExternalClientID = c.ExternalClientID
	stored.SyncStatus = c.SyncStatus
	stored.SyncDate = c.SyncDate
	stored.SyncError = c.SyncError
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return xerrors.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *memRepo) List(_ context.Context, f customer.ListFilters) ([]customer.Customer, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := []customer.Customer{}
	for _, c := range r.byID {
		if f.SyncStatus != "" && string(c.SyncStatus) != f.SyncStatus {
			continue
		}
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	start := (f.Page - 1) * f.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *memRepo) ListUnsynced(_ context.Context, limit int) ([]*customer.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*customer.Customer
	for _, c := range r.byID {
		if c.SyncStatus == customer.SyncPending || c.SyncStatus == customer.SyncFailed {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) GetStats(_ context.Context) (*customer.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &customer.Stats{Total: int64(len(r.byID))}, nil
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// fakeSyncer answers every sync with a fixed result.
type fakeSyncer struct {
	mu       sync.Mutex
	result   *xilnex.Result
	block    chan struct{}
	contacts []customer.Customer
	batch    func(contacts []*customer.Customer) []xilnex.BatchResult
}

func (f *fakeSyncer) SyncContact(_ context.Context, c *customer.Customer) *xilnex.Result {
	f.mu.Lock()
	f.contacts = append(f.contacts, *c)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	cp := *f.result
	return &cp
}

func (f *fakeSyncer) BatchSyncContacts(_ context.Context, contacts []*customer.Customer, _ int) []xilnex.BatchResult {
	if f.batch != nil {
		return f.batch(contacts)
	}
	return []xilnex.BatchResult{}
}

func (f *fakeSyncer) calls() []customer.Customer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]customer.Customer(nil), f.contacts...)
}

type fakeOutlets map[string]bool

func (f fakeOutlets) Exists(_ context.Context, code string) (bool, error) {
	return f[code], nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*wsdomain.WSMessage
}

func (p *recordingPublisher) Broadcast(msg *wsdomain.WSMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, msg)
}

func (p *recordingPublisher) types() []wsdomain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]wsdomain.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestService(repo *memRepo, syncer *fakeSyncer) (*CustomerService, *recordingPublisher) {
	pub := &recordingPublisher{}
	svc := NewCustomerService(repo, syncer, fakeOutlets{"MAIN": true, "BR1": true}, nil, pub, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc, pub
}
