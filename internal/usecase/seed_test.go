package usecase

import (
	"context"
	"testing"

	"roboterms/internal/infra/memstore"
)

func TestSeederIsRepeatable(t *testing.T) {
	store := memstore.New()
	seeder := &Seeder{Companies: store.Companies(), Policies: store.Policies()}

	res, err := seeder.Seed(context.Background(), false)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if res.PoliciesCreated != 4 || res.CompaniesCreated != 0 {
		t.Fatalf("unexpected first result %+v", res)
	}

	res, err = seeder.Seed(context.Background(), true)
	if err != nil {
		t.Fatalf("seed again: %v", err)
	}
	if res.PoliciesCreated != 0 || res.PoliciesSkipped != 4 || res.CompaniesCreated != 3 {
		t.Fatalf("unexpected second result %+v", res)
	}

	policies, _ := store.Policies().List(context.Background())
	if len(policies) != 4 || policies[0].Name != "Terms of Service" {
		t.Fatalf("unexpected policies %+v", policies)
	}
}
