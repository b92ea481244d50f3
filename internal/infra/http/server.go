// Package http is the gin transport for the verification daemon.
package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/config"
	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
	"github.com/srusht-ship-it/Automated-Document-Verif/internal/infra/db"
	"github.com/srusht-ship-it/Automated-Document-Verif/internal/ledger"
	"github.com/srusht-ship-it/Automated-Document-Verif/internal/usecase"
)

type Server struct {
	cfg   config.Config
	store *db.Store
	r     *gin.Engine

	verifyUC   *usecase.VerificationService
	registerUC *usecase.RegistrationService
	history    usecase.VerificationRepository
	chain      *ledger.Ledger

	adminAPIKey string

	rateLimiter       domain.RateLimiter
	rateLimitRequests int
	rateLimitWindow   time.Duration
}

type ServerDeps struct {
	Store       *db.Store
	Verify      *usecase.VerificationService
	Register    *usecase.RegistrationService
	History     usecase.VerificationRepository
	Chain       *ledger.Ledger
	AdminAPIKey string
	RateLimiter domain.RateLimiter
}

func NewServer(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:         cfg,
		store:       deps.Store,
		r:           r,
		verifyUC:    deps.Verify,
		registerUC:  deps.Register,
		history:     deps.History,
		chain:       deps.Chain,
		adminAPIKey: deps.AdminAPIKey,
		rateLimiter: deps.RateLimiter,
	}
	s.rateLimitRequests = cfg.RateLimitRequests
	if cfg.RateLimitWindowSeconds > 0 {
		s.rateLimitWindow = time.Duration(cfg.RateLimitWindowSeconds) * time.Second
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.r.GET("/healthz", s.handleHealthz)

	v1 := s.r.Group("/v1")
	{
		v1.POST("/documents/:id/verify", s.withRateLimit("documents:verify", s.handleVerify))
		v1.POST("/verifications/bulk", s.withRateLimit("verifications:bulk", s.handleBulkVerify))
		v1.GET("/documents/:id/verifications", s.handleListVerifications)

		v1.POST("/ledger/registrations", s.handleRegisterDocument)
		v1.GET("/ledger/registrations/:content_hash", s.handleLookupRegistration)
		v1.GET("/ledger/validate", s.handleValidateChain)
		v1.GET("/ledger/stats", s.handleChainStats)
	}

	s.r.NoRoute(s.handleNoRoute)
}

func (s *Server) Run() error {
	return s.r.Run(s.cfg.HTTPAddr)
}
