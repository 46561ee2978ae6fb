package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"roboterms/internal/domain"
)

// AddCompanyInput mirrors the POST /company payload. A nil field was absent.
type AddCompanyInput struct {
	Name    *string `json:"name"`
	Website *string `json:"website"`
}

type CompanyService struct {
	Companies domain.CompanyRepository
}

func NewCompanyService(companies domain.CompanyRepository) *CompanyService {
	return &CompanyService{Companies: companies}
}

func (s *CompanyService) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	if s == nil || s.Companies == nil {
		return nil, errors.New("company repository is required")
	}
	return s.Companies.List(ctx)
}

// AddCompany registers a company. Name and website are trimmed, must be
// non-empty and must not be used by any existing company.
func (s *CompanyService) AddCompany(ctx context.Context, in AddCompanyInput) (domain.Company, error) {
	if s == nil || s.Companies == nil {
		return domain.Company{}, errors.New("company repository is required")
	}
	if in.Name == nil || in.Website == nil {
		return domain.Company{}, fmt.Errorf("%w: name and website are required", domain.ErrInvalidArgument)
	}
	name := strings.TrimSpace(*in.Name)
	website := strings.TrimSpace(*in.Website)
	if name == "" || website == "" {
		return domain.Company{}, fmt.Errorf("%w: name and website must not be blank", domain.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(name) > domain.MaxNameLen {
		return domain.Company{}, fmt.Errorf("%w: name longer than %d characters", domain.ErrInvalidArgument, domain.MaxNameLen)
	}
	if utf8.RuneCountInString(website) > domain.MaxWebsiteLen {
		return domain.Company{}, fmt.Errorf("%w: website longer than %d characters", domain.ErrInvalidArgument, domain.MaxWebsiteLen)
	}

	existing, err := s.Companies.FindConflicting(ctx, name, website)
	if err != nil {
		return domain.Company{}, err
	}
	if len(existing) > 0 {
		field := "website"
		for _, c := range existing {
			if c.Name == name {
				field = "name"
			}
		}
		return domain.Company{}, fmt.Errorf("%w: company %s already registered", domain.ErrConflict, field)
	}

	company := domain.Company{Name: name, Website: website}
	if err := s.Companies.Create(ctx, &company); err != nil {
		return domain.Company{}, persistenceErr(err)
	}
	return company, nil
}

func (s *CompanyService) DeleteCompany(ctx context.Context, id int64) error {
	if s == nil || s.Companies == nil {
		return errors.New("company repository is required")
	}
	_, found, err := s.Companies.Get(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("company %d: %w", id, domain.ErrNotFound)
	}
	if err := s.Companies.Delete(ctx, id); err != nil {
		return persistenceErr(err)
	}
	return nil
}

// persistenceErr keeps not-found and conflict classifications and folds every
// other write failure into domain.ErrPersistence.
func persistenceErr(err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
}
