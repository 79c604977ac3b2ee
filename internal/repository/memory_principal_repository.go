package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/favorite-board/internal/domain"
)

// MemoryPrincipalRepository keeps principals in process. It backs tests and
// development runs without POSTGRES_DSN.
type MemoryPrincipalRepository struct {
	mu         sync.Mutex
	principals map[string]*domain.Principal
	now        func() time.Time
}

// NewMemoryPrincipalRepository creates an empty store.
func NewMemoryPrincipalRepository() *MemoryPrincipalRepository {
	return &MemoryPrincipalRepository{
		principals: make(map[string]*domain.Principal),
		now:        time.Now,
	}
}

func clonePrincipal(p *domain.Principal) *domain.Principal {
	cp := *p
	if p.TokenDigest != nil {
		digest := *p.TokenDigest
		cp.TokenDigest = &digest
	}
	if p.TokenExpiresAt != nil {
		exp := *p.TokenExpiresAt
		cp.TokenExpiresAt = &exp
	}
	return &cp
}

func (r *MemoryPrincipalRepository) Get(_ context.Context, email string) (*domain.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.principals[domain.NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePrincipal(p), nil
}

func (r *MemoryPrincipalRepository) List(_ context.Context) ([]*domain.Principal, error) {
	return r.filter(func(*domain.Principal) bool { return true }), nil
}

func (r *MemoryPrincipalRepository) ListSubscribed(_ context.Context) ([]*domain.Principal, error) {
	return r.filter(func(p *domain.Principal) bool { return p.IsSubscribed }), nil
}

func (r *MemoryPrincipalRepository) filter(keep func(*domain.Principal) bool) []*domain.Principal {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.Principal, 0, len(r.principals))
	for _, p := range r.principals {
		if keep(p) {
			out = append(out, clonePrincipal(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

// getOrCreate must be called with mu held.
func (r *MemoryPrincipalRepository) getOrCreate(email string) *domain.Principal {
	email = domain.NormalizeEmail(email)
	p, ok := r.principals[email]
	if !ok {
		p = domain.NewPrincipal(email)
		p.CreatedAt = r.now()
		p.UpdatedAt = p.CreatedAt
		r.principals[p.Email] = p
	}
	return p
}

func (r *MemoryPrincipalRepository) SetToken(_ context.Context, email, digest string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.getOrCreate(email)
	p.TokenDigest = &digest
	p.TokenExpiresAt = &expiresAt
	p.UpdatedAt = r.now()
	return nil
}

func (r *MemoryPrincipalRepository) ConsumeToken(_ context.Context, digest string, now time.Time) (*domain.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.principals {
		if p.TokenDigest == nil || *p.TokenDigest != digest {
			continue
		}
		if !p.HasPendingToken(now) {
			return nil, ErrNotFound
		}
		p.TokenDigest = nil
		p.TokenExpiresAt = nil
		p.UpdatedAt = r.now()
		return clonePrincipal(p), nil
	}
	return nil, ErrNotFound
}

func (r *MemoryPrincipalRepository) FindByTokenDigest(_ context.Context, digest string) (*domain.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.principals {
		if p.TokenDigest != nil && *p.TokenDigest == digest {
			return clonePrincipal(p), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryPrincipalRepository) Subscribe(_ context.Context, email string) (domain.SubscribeOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email = domain.NormalizeEmail(email)
	p, ok := r.principals[email]
	if !ok {
		r.getOrCreate(email)
		return domain.SubscribeCreated, nil
	}
	if p.IsSubscribed {
		return domain.SubscribeAlreadyActive, nil
	}
	p.IsSubscribed = true
	p.UpdatedAt = r.now()
	return domain.SubscribeResubscribed, nil
}

func (r *MemoryPrincipalRepository) SetSubscribed(_ context.Context, email string, subscribed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.principals[domain.NormalizeEmail(email)]; ok {
		p.IsSubscribed = subscribed
		p.UpdatedAt = r.now()
	}
	return nil
}

func (r *MemoryPrincipalRepository) UpsertRoles(_ context.Context, principal *domain.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.getOrCreate(principal.Email)
	p.IsAdmin = principal.IsAdmin
	p.IsEditor = principal.IsEditor
	p.IsSubscribed = principal.IsSubscribed
	p.UpdatedAt = r.now()

	principal.CreatedAt = p.CreatedAt
	principal.UpdatedAt = p.UpdatedAt
	return nil
}
