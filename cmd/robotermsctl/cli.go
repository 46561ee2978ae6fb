package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"roboterms/internal/config"
	"roboterms/internal/domain"
	"roboterms/internal/infra/db"
	"roboterms/internal/infra/memstore"
	"roboterms/internal/usecase"
)

type repositories struct {
	companies domain.CompanyRepository
	policies  domain.PolicyRepository
	store     *db.Store
}

// openStore is swapped out in tests.
var openStore = func(cfg config.Config) (repositories, func(), error) {
	store, err := db.NewStore(cfg, nil)
	if err != nil {
		return repositories{}, nil, err
	}
	return repositories{
		companies: db.NewCompanyRepository(store.DB),
		policies:  db.NewPolicyRepository(store.DB),
		store:     store,
	}, func() { _ = store.Close() }, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		usage(args, stderr)
		return 1
	}

	switch args[1] {
	case "migrate":
		return runMigrate(args[2:], stdout, stderr)
	case "seed":
		return runSeed(args[2:], stdout, stderr)
	case "render":
		return runRender(args[2:], stdout, stderr)
	case "preview":
		return runPreview(args[2:], stdout, stderr)
	}

	usage(args, stderr)
	return 1
}

func usage(args []string, w io.Writer) {
	name := "robotermsctl"
	if len(args) > 0 && args[0] != "" {
		name = filepath.Base(args[0])
	}
	fmt.Fprintf(w, "usage:\n")
	fmt.Fprintf(w, "  %s migrate\n", name)
	fmt.Fprintf(w, "  %s seed [--mock-companies]\n", name)
	fmt.Fprintf(w, "  %s render --company <id> --policy <id>\n", name)
	fmt.Fprintf(w, "  %s preview --company <id> --policy <id>\n", name)
}

func runMigrate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	repos, closeFn, err := openStore(config.FromEnv())
	if err != nil {
		fmt.Fprintf(stderr, "open store: %v\n", err)
		return 1
	}
	defer closeFn()
	if repos.store == nil {
		fmt.Fprintln(stderr, "migrate requires a database")
		return 1
	}
	if err := repos.store.Migrate(context.Background()); err != nil {
		fmt.Fprintf(stderr, "migrate: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, "migrations applied")
	return 0
}

func runSeed(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var mockCompanies bool
	fs.BoolVar(&mockCompanies, "mock-companies", false, "also insert demo companies")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	repos, closeFn, err := openStore(config.FromEnv())
	if err != nil {
		fmt.Fprintf(stderr, "open store: %v\n", err)
		return 1
	}
	defer closeFn()

	seeder := &usecase.Seeder{Companies: repos.companies, Policies: repos.policies}
	res, err := seeder.Seed(context.Background(), mockCompanies)
	if err != nil {
		fmt.Fprintf(stderr, "seed: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "policies: %d created, %d skipped\n", res.PoliciesCreated, res.PoliciesSkipped)
	if mockCompanies {
		fmt.Fprintf(stdout, "companies: %d created, %d skipped\n", res.CompaniesCreated, res.CompaniesSkipped)
	}
	return 0
}

func runRender(args []string, stdout, stderr io.Writer) int {
	companyID, policyID, ok := parseRenderFlags("render", args, stderr)
	if !ok {
		return 2
	}
	repos, closeFn, err := openStore(config.FromEnv())
	if err != nil {
		fmt.Fprintf(stderr, "open store: %v\n", err)
		return 1
	}
	defer closeFn()
	return render(repos, companyID, policyID, stdout, stderr)
}

// runPreview renders against the built-in sample data without a database.
func runPreview(args []string, stdout, stderr io.Writer) int {
	companyID, policyID, ok := parseRenderFlags("preview", args, stderr)
	if !ok {
		return 2
	}
	mem := memstore.New()
	repos := repositories{companies: mem.Companies(), policies: mem.Policies()}
	seeder := &usecase.Seeder{Companies: repos.companies, Policies: repos.policies}
	if _, err := seeder.Seed(context.Background(), true); err != nil {
		fmt.Fprintf(stderr, "seed: %v\n", err)
		return 1
	}
	return render(repos, companyID, policyID, stdout, stderr)
}

func parseRenderFlags(name string, args []string, stderr io.Writer) (int64, int64, bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var companyID, policyID int64
	fs.Int64Var(&companyID, "company", 0, "company id")
	fs.Int64Var(&policyID, "policy", 0, "policy id")
	if err := fs.Parse(args); err != nil {
		return 0, 0, false
	}
	if companyID <= 0 || policyID <= 0 {
		fmt.Fprintln(stderr, "--company and --policy are required")
		return 0, 0, false
	}
	return companyID, policyID, true
}

func render(repos repositories, companyID, policyID int64, stdout, stderr io.Writer) int {
	svc := usecase.NewPolicyService(repos.policies, repos.companies)
	text, err := svc.RenderPolicy(context.Background(), companyID, policyID)
	if err != nil {
		fmt.Fprintf(stderr, "render: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, text)
	return 0
}
