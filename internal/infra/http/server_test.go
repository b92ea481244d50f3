package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/config"
	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
	"github.com/srusht-ship-it/Automated-Document-Verif/internal/infra/ratelimit"
	"github.com/srusht-ship-it/Automated-Document-Verif/internal/ledger"
	"github.com/srusht-ship-it/Automated-Document-Verif/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type docRepoStub struct {
	docs map[string]domain.DocumentRecord
}

func (r *docRepoStub) GetByID(_ context.Context, id string) (domain.DocumentRecord, error) {
	doc, ok := r.docs[id]
	if !ok {
		return domain.DocumentRecord{}, domain.ErrDocumentNotFound
	}
	return doc, nil
}

func (r *docRepoStub) SetStatus(_ context.Context, id string, status domain.DocumentStatus) error {
	doc, ok := r.docs[id]
	if !ok {
		return domain.ErrDocumentNotFound
	}
	doc.Status = status
	r.docs[id] = doc
	return nil
}

type historyStub struct {
	records []domain.VerificationRecord
}

func (h *historyStub) Append(_ context.Context, record domain.VerificationRecord) error {
	h.records = append(h.records, record)
	return nil
}

func (h *historyStub) ListByDocument(_ context.Context, documentID string) ([]domain.VerificationRecord, error) {
	var out []domain.VerificationRecord
	for _, r := range h.records {
		if r.DocumentID == documentID {
			out = append(out, r)
		}
	}
	return out, nil
}

type extractorStub struct {
	result domain.ExtractionResult
}

func (e extractorStub) Extract(context.Context, string, string) (domain.ExtractionResult, error) {
	return e.result, nil
}

type integrityStub struct {
	report domain.IntegrityReport
}

func (i integrityStub) Check(context.Context, string) (domain.IntegrityReport, error) {
	return i.report, nil
}

func (i integrityStub) FileHash(context.Context, string) (string, error) {
	return i.report.ContentHash, nil
}

func fixedClock() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func testDocument() domain.DocumentRecord {
	return domain.DocumentRecord{
		ID:           "doc-1",
		FilePath:     "/data/doc-1.pdf",
		DeclaredType: domain.DocTypeBirthCertificate,
		Status:       domain.DocStatusUploaded,
		Metadata: domain.DocumentMetadata{
			RecipientName: "Jane Doe",
			IssuerID:      "issuer-1",
			RecipientID:   "recipient-1",
			OriginalName:  "birth-cert.pdf",
		},
	}
}

func goodExtraction() domain.ExtractionResult {
	return domain.ExtractionResult{
		Success:    true,
		Confidence: 92,
		Text: "Certificate of Birth\nName: Jane Doe\nDate of Birth: 01/15/1995\n" +
			"Place: Springfield, State of Illinois\nBorn on the fifteenth day of January in the county of Sangamon," +
			" this record certifies the birth of the child named above to the listed parents.",
	}
}

func newTestServer(t *testing.T, cfg config.Config, limiter domain.RateLimiter) (*Server, *docRepoStub, *ledger.Ledger) {
	t.Helper()
	docs := &docRepoStub{docs: map[string]domain.DocumentRecord{"doc-1": testDocument()}}
	history := &historyStub{}
	chain := ledger.New(ledger.TrivialSealer{}, fixedClock)

	verifyUC := usecase.NewVerificationService(
		docs,
		history,
		extractorStub{result: goodExtraction()},
		integrityStub{report: domain.IntegrityReport{FileSize: 1024, ContentHash: "hash-doc-1"}},
		nil,
		chain,
	)
	registerUC := &usecase.RegistrationService{
		Docs:      docs,
		Integrity: integrityStub{report: domain.IntegrityReport{ContentHash: "hash-doc-1"}},
		Ledger:    chain,
	}

	srv := NewServer(cfg, ServerDeps{
		Verify:      verifyUC,
		Register:    registerUC,
		History:     history,
		Chain:       chain,
		AdminAPIKey: cfg.AdminAPIKey,
		RateLimiter: limiter,
	})
	return srv, docs, chain
}

func doRequest(srv *Server, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	srv.r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t, config.Config{}, nil)
	w := doRequest(srv, http.MethodGet, "/healthz", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"mode":"no-db"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestVerifyDocument(t *testing.T) {
	srv, docs, chain := newTestServer(t, config.Config{}, nil)

	w := doRequest(srv, http.MethodPost, "/v1/documents/doc-1/verify",
		verifyRequest{VerifierID: "verifier-1"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}

	var record domain.VerificationRecord
	if err := json.Unmarshal(w.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record.DocumentID != "doc-1" {
		t.Fatalf("document_id = %s", record.DocumentID)
	}
	if !record.IsAuthentic {
		t.Fatalf("expected authentic, got confidence %d flags %v", record.Confidence, record.Flags)
	}
	if len(record.Analyses) != 5 {
		t.Fatalf("analyses = %d", len(record.Analyses))
	}
	if docs.docs["doc-1"].Status != domain.DocStatusVerified {
		t.Fatalf("status = %s", docs.docs["doc-1"].Status)
	}
	if events := chain.HistoryFor("doc-1"); len(events) != 1 {
		t.Fatalf("ledger events = %d", len(events))
	}
}

func TestVerifyUnknownDocument(t *testing.T) {
	srv, _, _ := newTestServer(t, config.Config{}, nil)
	w := doRequest(srv, http.MethodPost, "/v1/documents/ghost/verify", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != "DOCUMENT_NOT_FOUND" {
		t.Fatalf("code = %s", resp.Code)
	}
}

func TestVerifyAlreadyVerifiedConflict(t *testing.T) {
	srv, docs, _ := newTestServer(t, config.Config{}, nil)
	doc := docs.docs["doc-1"]
	doc.Status = domain.DocStatusVerified
	docs.docs["doc-1"] = doc

	w := doRequest(srv, http.MethodPost, "/v1/documents/doc-1/verify", nil, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d", w.Code)
	}

	w = doRequest(srv, http.MethodPost, "/v1/documents/doc-1/verify",
		verifyRequest{Force: true}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("force re-verify status = %d body = %s", w.Code, w.Body.String())
	}
}

func TestBulkVerifyPartialFailure(t *testing.T) {
	srv, _, _ := newTestServer(t, config.Config{}, nil)
	w := doRequest(srv, http.MethodPost, "/v1/verifications/bulk", bulkVerifyRequest{
		DocumentIDs: []string{"doc-1", "ghost"},
		VerifierID:  "verifier-1",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var result usecase.BulkResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Succeeded) != 1 || len(result.Failed) != 1 {
		t.Fatalf("succeeded = %d failed = %d", len(result.Succeeded), len(result.Failed))
	}
	if result.Failed[0].DocumentID != "ghost" {
		t.Fatalf("failed document = %s", result.Failed[0].DocumentID)
	}
}

func TestBulkVerifyRejectsEmptyBatch(t *testing.T) {
	srv, _, _ := newTestServer(t, config.Config{}, nil)
	w := doRequest(srv, http.MethodPost, "/v1/verifications/bulk",
		bulkVerifyRequest{VerifierID: "verifier-1"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestListVerifications(t *testing.T) {
	srv, _, _ := newTestServer(t, config.Config{}, nil)

	if w := doRequest(srv, http.MethodPost, "/v1/documents/doc-1/verify", nil, nil); w.Code != http.StatusOK {
		t.Fatalf("verify status = %d", w.Code)
	}
	w := doRequest(srv, http.MethodGet, "/v1/documents/doc-1/verifications", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		DocumentID    string                      `json:"document_id"`
		Verifications []domain.VerificationRecord `json:"verifications"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Verifications) != 1 {
		t.Fatalf("verifications = %d", len(resp.Verifications))
	}
}

func TestRegistrationRequiresAdminKey(t *testing.T) {
	srv, _, _ := newTestServer(t, config.Config{AdminAPIKey: "secret"}, nil)

	w := doRequest(srv, http.MethodPost, "/v1/ledger/registrations",
		registerRequest{DocumentID: "doc-1"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status without key = %d", w.Code)
	}

	w = doRequest(srv, http.MethodPost, "/v1/ledger/registrations",
		registerRequest{DocumentID: "doc-1"},
		map[string]string{"X-Admin-Key": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status with wrong key = %d", w.Code)
	}

	w = doRequest(srv, http.MethodPost, "/v1/ledger/registrations",
		registerRequest{DocumentID: "doc-1"},
		map[string]string{"X-Admin-Key": "secret"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status with key = %d body = %s", w.Code, w.Body.String())
	}
	var resp registrationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.BlockIndex != 1 || resp.DocumentID != "doc-1" {
		t.Fatalf("registration = %+v", resp)
	}
}

func TestLookupRegistration(t *testing.T) {
	srv, _, _ := newTestServer(t, config.Config{AdminAPIKey: "secret"}, nil)

	if w := doRequest(srv, http.MethodPost, "/v1/ledger/registrations",
		registerRequest{DocumentID: "doc-1"},
		map[string]string{"X-Admin-Key": "secret"}); w.Code != http.StatusCreated {
		t.Fatalf("register status = %d", w.Code)
	}

	w := doRequest(srv, http.MethodGet, "/v1/ledger/registrations/hash-doc-1", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("lookup status = %d", w.Code)
	}

	w = doRequest(srv, http.MethodGet, "/v1/ledger/registrations/unknown-hash", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("miss status = %d", w.Code)
	}
}

func TestValidateAndStats(t *testing.T) {
	srv, _, _ := newTestServer(t, config.Config{}, nil)

	if w := doRequest(srv, http.MethodPost, "/v1/documents/doc-1/verify", nil, nil); w.Code != http.StatusOK {
		t.Fatalf("verify status = %d", w.Code)
	}

	w := doRequest(srv, http.MethodGet, "/v1/ledger/validate", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("validate status = %d", w.Code)
	}
	var validation chainValidationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &validation); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !validation.Valid || validation.FailedIndex != -1 {
		t.Fatalf("validation = %+v", validation)
	}

	w = doRequest(srv, http.MethodGet, "/v1/ledger/stats", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats status = %d", w.Code)
	}
	var stats chainStatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.TotalBlocks != 2 || stats.Verifications != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestVerifyRateLimited(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{})
	srv, _, _ := newTestServer(t, config.Config{
		RateLimitRequests:      1,
		RateLimitWindowSeconds: 60,
	}, limiter)

	w := doRequest(srv, http.MethodPost, "/v1/documents/doc-1/verify",
		verifyRequest{Force: true}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("first status = %d", w.Code)
	}
	if w.Header().Get("RateLimit-Limit") != "1" {
		t.Fatalf("missing RateLimit-Limit header")
	}

	w = doRequest(srv, http.MethodPost, "/v1/documents/doc-1/verify",
		verifyRequest{Force: true}, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After header")
	}
}

func TestUnknownRoute(t *testing.T) {
	srv, _, _ := newTestServer(t, config.Config{}, nil)
	w := doRequest(srv, http.MethodGet, "/v1/nope", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}
