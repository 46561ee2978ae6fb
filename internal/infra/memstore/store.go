package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"roboterms/internal/domain"
)

// Store keeps companies and policies in memory with the same uniqueness
// rules as the database schema.
type Store struct {
	mu         sync.Mutex
	companies  map[int64]domain.Company
	policies   map[int64]domain.Policy
	companySeq int64
	policySeq  int64
}

func New() *Store {
	return &Store{
		companies: make(map[int64]domain.Company),
		policies:  make(map[int64]domain.Policy),
	}
}

func (s *Store) Companies() *CompanyRepository { return &CompanyRepository{s: s} }

func (s *Store) Policies() *PolicyRepository { return &PolicyRepository{s: s} }

type CompanyRepository struct {
	s *Store
}

func (r *CompanyRepository) Create(_ context.Context, company *domain.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.companies {
		if c.Name == company.Name || c.Website == company.Website {
			return fmt.Errorf("create company: %w", domain.ErrConflict)
		}
	}
	r.s.companySeq++
	company.ID = r.s.companySeq
	r.s.companies[company.ID] = *company
	return nil
}

func (r *CompanyRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.companies[id]; !ok {
		return fmt.Errorf("delete company %d: %w", id, domain.ErrNotFound)
	}
	delete(r.s.companies, id)
	return nil
}

func (r *CompanyRepository) Get(_ context.Context, id int64) (domain.Company, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[id]
	return c, ok, nil
}

func (r *CompanyRepository) List(_ context.Context) ([]domain.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Company, 0, len(r.s.companies))
	for _, c := range r.s.companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CompanyRepository) FindConflicting(_ context.Context, name, website string) ([]domain.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Company
	for _, c := range r.s.companies {
		if c.Name == name || c.Website == website {
			out = append(out, c)
		}
	}
	return out, nil
}

type PolicyRepository struct {
	s *Store
}

func (r *PolicyRepository) Create(_ context.Context, policy *domain.Policy) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.nameTakenLocked(policy.Name, 0) {
		return fmt.Errorf("create policy: %w", domain.ErrConflict)
	}
	r.s.policySeq++
	policy.ID = r.s.policySeq
	r.s.policies[policy.ID] = *policy
	return nil
}

func (r *PolicyRepository) Update(_ context.Context, policy domain.Policy) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.policies[policy.ID]; !ok {
		return fmt.Errorf("update policy %d: %w", policy.ID, domain.ErrNotFound)
	}
	if r.nameTakenLocked(policy.Name, policy.ID) {
		return fmt.Errorf("update policy: %w", domain.ErrConflict)
	}
	r.s.policies[policy.ID] = policy
	return nil
}

func (r *PolicyRepository) Get(_ context.Context, id int64) (domain.Policy, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.policies[id]
	return p, ok, nil
}

func (r *PolicyRepository) List(_ context.Context) ([]domain.Policy, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Policy, 0, len(r.s.policies))
	for _, p := range r.s.policies {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PolicyRepository) NameTaken(_ context.Context, name string, excludeID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.nameTakenLocked(name, excludeID), nil
}

func (r *PolicyRepository) nameTakenLocked(name string, excludeID int64) bool {
	for id, p := range r.s.policies {
		if id != excludeID && p.Name == name {
			return true
		}
	}
	return false
}
