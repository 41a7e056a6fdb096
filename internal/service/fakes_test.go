package service

import (
	"context"
	"sync"
	"time"

	"books-storefront/internal/dto"
	"books-storefront/internal/model"

	"gorm.io/gorm"
)

type fakeMarketplace struct {
	mu sync.Mutex

	base string

	listFn     func(ctx context.Context, filter model.Filter) (*dto.ResourcesResponse, error)
	loginFn    func(req dto.LoginRequest) (*model.Session, error)
	registerFn func(req dto.RegisterRequest) error
	payFn      func(ctx context.Context, req dto.PayRequest) (*dto.PayResponse, error)
	uploadFn   func(req dto.UploadRequest) error
	deleteFn   func(id model.ResourceID) error
	changeFn   func(req dto.ChangePasswordRequest) error
	users      int

	listCalls  int
	loginCalls int
	payCalls   int
	payReqs    []dto.PayRequest
	uploads    []dto.UploadRequest
}

func (f *fakeMarketplace) BaseURL() string {
	if f.base == "" {
		return "https://books.example/api"
	}
	return f.base
}

func (f *fakeMarketplace) ListResources(ctx context.Context, filter model.Filter) (*dto.ResourcesResponse, error) {
	f.mu.Lock()
	f.listCalls++
	fn := f.listFn
	f.mu.Unlock()
	if fn == nil {
		return &dto.ResourcesResponse{}, nil
	}
	return fn(ctx, filter)
}

func (f *fakeMarketplace) CountUsers(ctx context.Context) (int, error) {
	return f.users, nil
}

func (f *fakeMarketplace) Login(ctx context.Context, req dto.LoginRequest) (*model.Session, error) {
	f.mu.Lock()
	f.loginCalls++
	f.mu.Unlock()
	if f.loginFn == nil {
		return &model.Session{Username: req.Username, Email: req.Username + "@x.com"}, nil
	}
	return f.loginFn(req)
}

func (f *fakeMarketplace) Register(ctx context.Context, req dto.RegisterRequest) error {
	if f.registerFn == nil {
		return nil
	}
	return f.registerFn(req)
}

func (f *fakeMarketplace) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) error {
	if f.changeFn == nil {
		return nil
	}
	return f.changeFn(req)
}

func (f *fakeMarketplace) RequestPasswordReset(ctx context.Context, req dto.PasswordResetRequest) (string, error) {
	return "If the email exists, reset instructions will be sent", nil
}

func (f *fakeMarketplace) ConfirmPasswordReset(ctx context.Context, req dto.PasswordResetConfirmRequest) (string, error) {
	return "Password reset successful", nil
}

func (f *fakeMarketplace) Upload(ctx context.Context, req dto.UploadRequest) error {
	f.mu.Lock()
	f.uploads = append(f.uploads, req)
	f.mu.Unlock()
	if f.uploadFn == nil {
		return nil
	}
	return f.uploadFn(req)
}

func (f *fakeMarketplace) DeleteResource(ctx context.Context, id model.ResourceID) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(id)
}

func (f *fakeMarketplace) Pay(ctx context.Context, req dto.PayRequest) (*dto.PayResponse, error) {
	f.mu.Lock()
	f.payCalls++
	f.payReqs = append(f.payReqs, req)
	fn := f.payFn
	f.mu.Unlock()
	if fn == nil {
		return &dto.PayResponse{}, nil
	}
	return fn(ctx, req)
}

func (f *fakeMarketplace) PayCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payCalls
}

type memStorage struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStorage() *memStorage {
	return &memStorage{data: map[string]string{}}
}

func (m *memStorage) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStorage) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStorage) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type memTxnRepo struct {
	mu   sync.Mutex
	txns map[string]*model.PaymentTransaction
}

func newMemTxnRepo() *memTxnRepo {
	return &memTxnRepo{txns: map[string]*model.PaymentTransaction{}}
}

func (r *memTxnRepo) Create(ctx context.Context, txn *model.PaymentTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.txns[txn.OrderTrackingID]; !ok {
		cp := *txn
		r.txns[txn.OrderTrackingID] = &cp
	}
	return nil
}

func (r *memTxnRepo) FindByTrackingID(ctx context.Context, id string) (*model.PaymentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.txns[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *txn
	return &cp, nil
}

func (r *memTxnRepo) MarkFollowed(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.txns[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	txn.FollowedAt = &now
	return nil
}

func (r *memTxnRepo) ListByEmail(ctx context.Context, email string) ([]*model.PaymentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.PaymentTransaction
	for _, txn := range r.txns {
		if txn.Email == email {
			cp := *txn
			out = append(out, &cp)
		}
	}
	return out, nil
}

type recordingOpener struct {
	mu   sync.Mutex
	urls []string
}

func (o *recordingOpener) Open(ctx context.Context, rawURL string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.urls = append(o.urls, rawURL)
	return nil
}

func (o *recordingOpener) URLs() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.urls...)
}

type memResourceCache struct {
	mu        sync.Mutex
	resources []model.Resource
	replaced  int
}

func (c *memResourceCache) Seed(ctx context.Context) error { return nil }

func (c *memResourceCache) Replace(ctx context.Context, resources []model.Resource) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources = append([]model.Resource(nil), resources...)
	c.replaced++
	return nil
}

func (c *memResourceCache) GetByType(ctx context.Context, t model.ResourceType) ([]model.Resource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []model.Resource{}
	for _, r := range c.resources {
		if r.ResourceType == t {
			out = append(out, r)
		}
	}
	return out, nil
}
