package http

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
	"github.com/srusht-ship-it/Automated-Document-Verif/internal/usecase"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type verifyRequest struct {
	VerifierID string `json:"verifier_id"`
	Notes      string `json:"notes,omitempty"`
	Force      bool   `json:"force,omitempty"`
}

type bulkVerifyRequest struct {
	DocumentIDs []string `json:"document_ids"`
	VerifierID  string   `json:"verifier_id"`
	Notes       string   `json:"notes,omitempty"`
}

type registerRequest struct {
	DocumentID string `json:"document_id"`
}

type registrationResponse struct {
	BlockIndex int               `json:"block_index"`
	BlockHash  string            `json:"block_hash"`
	DocumentID string            `json:"document_id"`
	IssuerID   string            `json:"issuer_id,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type chainValidationResponse struct {
	Valid       bool   `json:"valid"`
	FailedIndex int    `json:"failed_index"`
	Reason      string `json:"reason,omitempty"`
}

type chainStatsResponse struct {
	TotalBlocks       int  `json:"total_blocks"`
	TotalTransactions int  `json:"total_transactions"`
	Registrations     int  `json:"registrations"`
	Verifications     int  `json:"verifications"`
	ChainValid        bool `json:"chain_valid"`
}

func (s *Server) handleHealthz(c *gin.Context) {
	dbMode := "no-db"
	if s.store != nil && s.store.DB != nil {
		dbMode = "db"
	}
	resp := gin.H{"status": "ok", "mode": dbMode}
	if s.chain != nil {
		resp["ledger_blocks"] = len(s.chain.Blocks())
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleVerify(c *gin.Context) {
	if s.verifyUC == nil {
		writeError(c, domain.ErrDocumentNotFound)
		return
	}
	documentID := c.Param("id")

	var req verifyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
			return
		}
	}

	record, err := s.verifyUC.Verify(c.Request.Context(), usecase.VerifyRequest{
		DocumentID:    documentID,
		VerifierID:    req.VerifierID,
		Notes:         req.Notes,
		ForceReVerify: req.Force,
	})
	if err != nil {
		if errors.Is(err, domain.ErrExtractionFailed) {
			// The document exists but yielded no usable text; the failed
			// record carries the details.
			c.JSON(http.StatusUnprocessableEntity, record)
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) handleBulkVerify(c *gin.Context) {
	if s.verifyUC == nil {
		writeError(c, domain.ErrDocumentNotFound)
		return
	}
	var req bulkVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	result, err := s.verifyUC.BulkVerify(c.Request.Context(), req.DocumentIDs, req.VerifierID, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleListVerifications(c *gin.Context) {
	if s.history == nil {
		writeError(c, domain.ErrDocumentNotFound)
		return
	}
	documentID := c.Param("id")
	records, err := s.history.ListByDocument(c.Request.Context(), documentID)
	if err != nil {
		writeError(c, err)
		return
	}
	if records == nil {
		records = []domain.VerificationRecord{}
	}
	c.JSON(http.StatusOK, gin.H{
		"document_id":   documentID,
		"verifications": records,
	})
}

func (s *Server) handleRegisterDocument(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}
	if s.registerUC == nil {
		writeError(c, domain.ErrDocumentNotFound)
		return
	}
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if req.DocumentID == "" {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "document_id is required")
		return
	}
	_, info, err := s.registerUC.Register(c.Request.Context(), req.DocumentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, registrationFromInfo(info))
}

func (s *Server) handleLookupRegistration(c *gin.Context) {
	if s.chain == nil {
		writeError(c, domain.ErrDocumentNotFound)
		return
	}
	contentHash := c.Param("content_hash")
	info, ok := s.chain.FindByContentHash(contentHash)
	if !ok {
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "content hash not registered")
		return
	}
	c.JSON(http.StatusOK, registrationFromInfo(info))
}

func (s *Server) handleValidateChain(c *gin.Context) {
	if s.chain == nil {
		writeError(c, domain.ErrDocumentNotFound)
		return
	}
	validation := s.chain.Validate()
	c.JSON(http.StatusOK, chainValidationResponse{
		Valid:       validation.Valid,
		FailedIndex: validation.FailedIndex,
		Reason:      validation.Reason,
	})
}

func (s *Server) handleChainStats(c *gin.Context) {
	if s.chain == nil {
		writeError(c, domain.ErrDocumentNotFound)
		return
	}
	stats := s.chain.Stats()
	c.JSON(http.StatusOK, chainStatsResponse{
		TotalBlocks:       stats.TotalBlocks,
		TotalTransactions: stats.TotalTransactions,
		Registrations:     stats.Registrations,
		Verifications:     stats.Verifications,
		ChainValid:        stats.ChainValid,
	})
}

func (s *Server) handleNoRoute(c *gin.Context) {
	writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
}

func (s *Server) requireAdmin(c *gin.Context) bool {
	if s.adminAPIKey == "" {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "admin key required")
		return false
	}
	key := c.GetHeader("X-Admin-Key")
	if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.adminAPIKey)) != 1 {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid admin key")
		return false
	}
	return true
}

func (s *Server) withRateLimit(routeID string, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.enforceRateLimit(c, routeID) {
			return
		}
		handler(c)
	}
}

func (s *Server) enforceRateLimit(c *gin.Context, routeID string) bool {
	if s.rateLimiter == nil || s.rateLimitRequests <= 0 {
		return true
	}
	key := "client:" + c.ClientIP() + ":endpoint:" + routeID
	decision, err := s.rateLimiter.Allow(c.Request.Context(), key, s.rateLimitRequests, s.rateLimitWindow)
	if err != nil {
		// Limiter outage never blocks verification traffic.
		return true
	}
	writeRateLimitHeaders(c, decision)
	if !decision.Allowed {
		writeErrorCode(c, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
		return false
	}
	return true
}

func writeRateLimitHeaders(c *gin.Context, decision domain.RateLimitDecision) {
	if decision.Limit > 0 {
		c.Header("RateLimit-Limit", strconv.Itoa(decision.Limit))
	}
	if decision.Remaining >= 0 {
		c.Header("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	}
	if !decision.ResetAt.IsZero() {
		c.Header("RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
		if !decision.Allowed {
			retryAfter := int64(time.Until(decision.ResetAt).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
		}
	}
}

func registrationFromInfo(info domain.RegistrationInfo) registrationResponse {
	return registrationResponse{
		BlockIndex: info.BlockIndex,
		BlockHash:  info.BlockHash,
		DocumentID: info.DocumentID,
		IssuerID:   info.IssuerID,
		Timestamp:  info.Timestamp,
		Metadata:   info.Metadata,
	}
}

func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound):
		status, code = http.StatusNotFound, "DOCUMENT_NOT_FOUND"
	case errors.Is(err, domain.ErrAlreadyVerified):
		status, code = http.StatusConflict, "ALREADY_VERIFIED"
	case errors.Is(err, domain.ErrBulkSizeInvalid):
		status, code = http.StatusBadRequest, "BULK_SIZE_INVALID"
	case errors.Is(err, domain.ErrDocumentUnreadable):
		status, code = http.StatusUnprocessableEntity, "DOCUMENT_UNREADABLE"
	case errors.Is(err, domain.ErrExtractionFailed):
		status, code = http.StatusUnprocessableEntity, "EXTRACTION_FAILED"
	case errors.Is(err, domain.ErrLedgerAppend):
		status, code = http.StatusServiceUnavailable, "LEDGER_APPEND_FAILED"
	}
	c.JSON(status, errorResponse{Code: code, Message: err.Error()})
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{Code: code, Message: message})
}
