package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"roboterms/internal/config"
	"roboterms/internal/domain"
	"roboterms/internal/infra/auth/oidc"
	"roboterms/internal/infra/auth/rbac"
	"roboterms/internal/infra/db"
	"roboterms/internal/infra/logging"
	"roboterms/internal/infra/memstore"
	"roboterms/internal/infra/metrics"
	"roboterms/internal/infra/ratelimit"
	"roboterms/internal/infra/readme"
	"roboterms/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg    config.Config
	store  *db.Store
	r      *gin.Engine
	mode   string
	logger *slog.Logger

	companies *usecase.CompanyService
	policies  *usecase.PolicyService
	readme    *readme.Renderer
	readmeErr error
	metrics   *metrics.Metrics

	verifier    domain.Verifier
	checker     domain.PermissionChecker
	authInitErr error

	rateLimiter         domain.RateLimiter
	rateLimitRequests   int
	rateLimitWindow     time.Duration
	rateLimitFailClosed bool
}

// NewServer wires the service against the database store, or against an
// in-memory store when store is nil.
func NewServer(cfg config.Config, store *db.Store, logger *slog.Logger) *Server {
	deps := ServerDeps{Logger: logger}
	if store != nil && store.DB != nil {
		deps.Companies = db.NewCompanyRepository(store.DB)
		deps.Policies = db.NewPolicyRepository(store.DB)
		deps.Mode = "db"
	} else {
		mem := memstore.New()
		deps.Companies = mem.Companies()
		deps.Policies = mem.Policies()
		deps.Mode = "memory"
	}
	s := NewServerWithDeps(cfg, deps)
	s.store = store
	return s
}

type ServerDeps struct {
	Companies   domain.CompanyRepository
	Policies    domain.PolicyRepository
	Verifier    domain.Verifier
	Checker     domain.PermissionChecker
	RateLimiter domain.RateLimiter
	Readme      *readme.Renderer
	Logger      *slog.Logger
	Mode        string
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	s := &Server{
		cfg:       cfg,
		r:         gin.New(),
		mode:      deps.Mode,
		logger:    deps.Logger,
		companies: usecase.NewCompanyService(deps.Companies),
		policies:  usecase.NewPolicyService(deps.Policies, deps.Companies),
		readme:    deps.Readme,
		metrics:   metrics.New(),
		verifier:  deps.Verifier,
		checker:   deps.Checker,
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.mode == "" {
		s.mode = "memory"
	}
	if s.readme == nil {
		s.readme, s.readmeErr = readme.New(cfg.ReadmePath, readme.DefaultStyle)
	}
	s.initRateLimit(deps.RateLimiter)
	s.initAuth()
	s.middleware()
	s.routes()
	return s
}

func (s *Server) initAuth() {
	if s.verifier == nil {
		verifier, err := oidc.NewVerifier(s.cfg)
		if err != nil {
			s.authInitErr = err
			return
		}
		s.verifier = verifier
	}
	if s.checker == nil {
		s.checker = rbac.NewAuthorizer()
	}
}

func (s *Server) initRateLimit(override domain.RateLimiter) {
	s.rateLimiter = override
	if s.rateLimiter == nil && s.cfg.RateLimitRequests > 0 {
		if s.cfg.RedisAddr != "" {
			limiter, err := ratelimit.NewRedis(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB)
			if err != nil {
				s.logger.Warn("redis rate limiter unavailable, using memory", "error", err)
			} else {
				s.rateLimiter = limiter
			}
		}
		if s.rateLimiter == nil {
			s.rateLimiter = ratelimit.NewMemory(ratelimit.WithMaxKeys(s.cfg.RateLimitMaxKeys))
		}
	}
	s.rateLimitRequests = s.cfg.RateLimitRequests
	s.rateLimitWindow = s.cfg.RateLimitWindow()
	s.rateLimitFailClosed = s.cfg.RateLimitFailClosed
}

func (s *Server) middleware() {
	s.r.HandleMethodNotAllowed = true
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AddAllowHeaders("Authorization")
	corsCfg.AddExposeHeaders(requestIDHeader)

	s.r.Use(
		s.requestID(),
		s.requestLogger(),
		gin.CustomRecovery(s.recovered),
		s.metrics.Middleware(),
		cors.New(corsCfg),
	)
}

func (s *Server) routes() {
	s.r.GET("/", s.handleReadme)
	s.r.GET("/healthz", s.handleHealth)
	s.r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	s.r.GET("/companies", s.handleListCompanies)
	s.r.GET("/policies", s.handleListPolicies)
	s.r.GET("/rendered_policy/:company_id/:policy_id", s.handleRenderedPolicy)

	s.r.POST("/company", s.rateLimit("post_company"), s.requirePermission(rbac.PermPostCompany), s.handleAddCompany)
	s.r.DELETE("/company/:id", s.rateLimit("delete_company"), s.requirePermission(rbac.PermDeleteCompany), s.handleDeleteCompany)
	s.r.PATCH("/policy/:id", s.rateLimit("edit_policy"), s.requirePermission(rbac.PermEditPolicy), s.handleEditPolicy)

	s.r.NoRoute(func(c *gin.Context) { writeStatus(c, http.StatusNotFound) })
	s.r.NoMethod(func(c *gin.Context) { writeStatus(c, http.StatusMethodNotAllowed) })
}

func (s *Server) Handler() http.Handler {
	return s.r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	if s.authInitErr != nil {
		return s.authInitErr
	}
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.HTTPAddr, "mode", s.mode)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if closer, ok := s.rateLimiter.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	return nil
}
