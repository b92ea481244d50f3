package main

import (
	"context"
	"log"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/config"
	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
	"github.com/srusht-ship-it/Automated-Document-Verif/internal/infra/cachemem"
	"github.com/srusht-ship-it/Automated-Document-Verif/internal/infra/db"
	httpinfra "github.com/srusht-ship-it/Automated-Document-Verif/internal/infra/http"
	"github.com/srusht-ship-it/Automated-Document-Verif/internal/infra/integrity"
	"github.com/srusht-ship-it/Automated-Document-Verif/internal/infra/ocr"
	"github.com/srusht-ship-it/Automated-Document-Verif/internal/infra/policyopa"
	"github.com/srusht-ship-it/Automated-Document-Verif/internal/infra/ratelimit"
	"github.com/srusht-ship-it/Automated-Document-Verif/internal/ledger"
	"github.com/srusht-ship-it/Automated-Document-Verif/internal/usecase"
)

func main() {
	cfg := config.FromEnv()

	store, err := db.NewStore(cfg)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}
	docs := db.NewDocumentRepository(store.DB)
	history := db.NewVerificationRepository(store.DB)

	if cfg.OCRBaseURL == "" {
		log.Fatalf("OCR_BASE_URL is required")
	}
	extractor, err := ocr.NewClient(cfg.OCRBaseURL, cfg.OCRTimeout())
	if err != nil {
		log.Fatalf("failed to init ocr client: %v", err)
	}

	var sealer ledger.Sealer = ledger.TrivialSealer{}
	if cfg.LedgerDifficulty > 0 {
		sealer = ledger.ProofOfWorkSealer{Difficulty: cfg.LedgerDifficulty}
	}
	chain := ledger.New(sealer, nil)
	chain.SealTimeout = cfg.LedgerSealTimeout()

	checker := integrity.NewChecker()

	verifyUC := usecase.NewVerificationService(docs, history, extractor, checker, nil, chain)
	verifyUC.Cache = cachemem.New()
	verifyUC.CacheTTL = cfg.VerifyCacheTTL()

	if cfg.ReviewPolicyPath != "" {
		engine, err := policyopa.NewEngineFromPath(context.Background(), cfg.ReviewPolicyPath)
		if err != nil {
			log.Fatalf("failed to load review policy: %v", err)
		}
		verifyUC.Policy = engine
		log.Printf("review policy loaded from %s", cfg.ReviewPolicyPath)
	}

	registerUC := &usecase.RegistrationService{
		Docs:      docs,
		Integrity: checker,
		Ledger:    chain,
	}

	var limiter domain.RateLimiter
	if cfg.RateLimitRequests > 0 {
		if cfg.RedisAddr != "" {
			limiter, err = ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, nil)
			if err != nil {
				log.Fatalf("failed to init redis rate limiter: %v", err)
			}
		} else {
			limiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{})
		}
	}

	srv := httpinfra.NewServer(cfg, httpinfra.ServerDeps{
		Store:       store,
		Verify:      verifyUC,
		Register:    registerUC,
		History:     history,
		Chain:       chain,
		AdminAPIKey: cfg.AdminAPIKey,
		RateLimiter: limiter,
	})
	log.Printf("verifierd listening on %s (ledger difficulty %d)", cfg.HTTPAddr, cfg.LedgerDifficulty)
	if err := srv.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
