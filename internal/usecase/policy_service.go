package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"roboterms/internal/domain"
)

// EditPolicyInput mirrors the PATCH /policy/{id} payload. A nil field was
// absent and is left untouched.
type EditPolicyInput struct {
	Name *string `json:"name"`
	Body *string `json:"body"`
}

type PolicyService struct {
	Policies  domain.PolicyRepository
	Companies domain.CompanyRepository
}

func NewPolicyService(policies domain.PolicyRepository, companies domain.CompanyRepository) *PolicyService {
	return &PolicyService{Policies: policies, Companies: companies}
}

func (s *PolicyService) ListPolicies(ctx context.Context) ([]domain.Policy, error) {
	if s == nil || s.Policies == nil {
		return nil, errors.New("policy repository is required")
	}
	return s.Policies.List(ctx)
}

func (s *PolicyService) EditPolicy(ctx context.Context, id int64, in EditPolicyInput) (domain.Policy, error) {
	if s == nil || s.Policies == nil {
		return domain.Policy{}, errors.New("policy repository is required")
	}
	policy, found, err := s.Policies.Get(ctx, id)
	if err != nil {
		return domain.Policy{}, err
	}
	if !found {
		return domain.Policy{}, fmt.Errorf("policy %d: %w", id, domain.ErrNotFound)
	}
	if in.Name == nil && in.Body == nil {
		return domain.Policy{}, fmt.Errorf("%w: name or body is required", domain.ErrInvalidArgument)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return domain.Policy{}, fmt.Errorf("%w: name must not be blank", domain.ErrInvalidArgument)
		}
		if utf8.RuneCountInString(name) > domain.MaxNameLen {
			return domain.Policy{}, fmt.Errorf("%w: name longer than %d characters", domain.ErrInvalidArgument, domain.MaxNameLen)
		}
		taken, err := s.Policies.NameTaken(ctx, name, id)
		if err != nil {
			return domain.Policy{}, err
		}
		if taken {
			return domain.Policy{}, fmt.Errorf("%w: policy name %q already used", domain.ErrConflict, name)
		}
		policy.Name = name
	}
	if in.Body != nil {
		if utf8.RuneCountInString(*in.Body) > domain.MaxBodyLen {
			return domain.Policy{}, fmt.Errorf("%w: body longer than %d characters", domain.ErrInvalidArgument, domain.MaxBodyLen)
		}
		policy.Body = *in.Body
	}

	if err := s.Policies.Update(ctx, policy); err != nil {
		return domain.Policy{}, persistenceErr(err)
	}
	return policy, nil
}

// RenderPolicy returns the policy body with the company's details filled in.
func (s *PolicyService) RenderPolicy(ctx context.Context, companyID, policyID int64) (string, error) {
	if s == nil || s.Policies == nil || s.Companies == nil {
		return "", errors.New("policy and company repositories are required")
	}
	company, found, err := s.Companies.Get(ctx, companyID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("company %d: %w", companyID, domain.ErrNotFound)
	}
	policy, found, err := s.Policies.Get(ctx, policyID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("policy %d: %w", policyID, domain.ErrNotFound)
	}
	return RenderForCompany(policy.Body, company)
}
