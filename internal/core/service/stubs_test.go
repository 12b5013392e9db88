package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

// memCRUD is a map-backed ports.CRUD used by the content service tests.
type memCRUD[T any] struct {
	mu       sync.Mutex
	items    map[string]T
	order    []string
	id       func(*T) string
	notFound error
	failNext error
}

func newMemCRUD[T any](id func(*T) string, notFound error) *memCRUD[T] {
	return &memCRUD[T]{items: make(map[string]T), id: id, notFound: notFound}
}

func (m *memCRUD[T]) Create(_ context.Context, item *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext; err != nil {
		m.failNext = nil
		return err
	}
	id := m.id(item)
	if _, ok := m.items[id]; ok {
		return domain.ErrAlreadyExists
	}
	m.items[id] = *item
	m.order = append(m.order, id)
	return nil
}

func (m *memCRUD[T]) FindByID(_ context.Context, id string) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, m.notFound
	}
	return &item, nil
}

func (m *memCRUD[T]) Update(_ context.Context, id string, fn func(*T) error) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, m.notFound
	}
	// work on a copy so a failing fn leaves the stored item untouched
	if err := fn(&item); err != nil {
		return nil, err
	}
	if err := m.failNext; err != nil {
		m.failNext = nil
		return nil, err
	}
	m.items[id] = item
	return &item, nil
}

func (m *memCRUD[T]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return m.notFound
	}
	delete(m.items, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memCRUD[T]) all() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.items[id])
	}
	return out
}

func (m *memCRUD[T]) List(context.Context) ([]T, error) { return m.all(), nil }

type stubHomeRepo struct{ *memCRUD[domain.Home] }

func newStubHomeRepo(homes ...domain.Home) *stubHomeRepo {
	r := &stubHomeRepo{newMemCRUD(func(h *domain.Home) string { return h.ID }, domain.ErrHomeNotFound)}
	for i := range homes {
		_ = r.Create(context.Background(), &homes[i])
	}
	return r
}

func (r *stubHomeRepo) FindByName(_ context.Context, name string) (*domain.Home, error) {
	for _, h := range r.all() {
		if strings.EqualFold(h.Name, name) {
			return &h, nil
		}
	}
	return nil, domain.ErrHomeNotFound
}

func (r *stubHomeRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	err   error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	r.users[user.Username] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

// ---------------------------------------------------------------------------
// Collaborator stubs
// ---------------------------------------------------------------------------

// syncQueue runs jobs inline so tests can assert on their effects.
type syncQueue struct {
	mu   sync.Mutex
	jobs []ports.Job
	errs []error
}

func (q *syncQueue) Enqueue(job ports.Job) bool {
	err := job.Run(context.Background())
	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.errs = append(q.errs, err)
	q.mu.Unlock()
	return true
}

type stubMailer struct {
	mu   sync.Mutex
	sent []ports.Message
	err  error
}

func (m *stubMailer) Send(_ context.Context, msg ports.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *stubMailer) to(addr string) []ports.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ports.Message
	for _, msg := range m.sent {
		for _, to := range msg.To {
			if strings.EqualFold(to, addr) {
				out = append(out, msg)
				break
			}
		}
	}
	return out
}

type stubBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	times   map[string]time.Time
	clock   func() time.Time
}

func newStubBlobStore(clock func() time.Time) *stubBlobStore {
	return &stubBlobStore{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
		times:   make(map[string]time.Time),
		clock:   clock,
	}
}

func (b *stubBlobStore) Put(_ context.Context, key string, body io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	b.types[key] = contentType
	b.times[key] = b.clock()
	return "https://cdn.test/" + key, nil
}

func (b *stubBlobStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, domain.ErrBackupNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *stubBlobStore) List(_ context.Context, prefix string) ([]ports.BlobObject, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []ports.BlobObject
	for k, v := range b.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, ports.BlobObject{Key: k, Size: int64(len(v)), LastModified: b.times[k]})
		}
	}
	return out, nil
}
