package domain

import "context"

const (
	MaxNameLen    = 80
	MaxWebsiteLen = 80
	MaxBodyLen    = 3000
)

type Company struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Website string `json:"website"`
}

type Policy struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Body string `json:"body"`
}

// CompanyRepository is the persistence boundary for companies. Get reports
// absence through found=false rather than an error.
type CompanyRepository interface {
	Create(ctx context.Context, company *Company) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (Company, bool, error)
	List(ctx context.Context) ([]Company, error)
	FindConflicting(ctx context.Context, name, website string) ([]Company, error)
}

type PolicyRepository interface {
	Create(ctx context.Context, policy *Policy) error
	Update(ctx context.Context, policy Policy) error
	Get(ctx context.Context, id int64) (Policy, bool, error)
	List(ctx context.Context) ([]Policy, error)
	NameTaken(ctx context.Context, name string, excludeID int64) (bool, error)
}
