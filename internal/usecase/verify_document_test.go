package usecase

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/analyzer"
	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
)

type docRepoStub struct {
	docs     map[string]domain.DocumentRecord
	statuses map[string]domain.DocumentStatus
}

func newDocRepoStub(docs ...domain.DocumentRecord) *docRepoStub {
	stub := &docRepoStub{
		docs:     map[string]domain.DocumentRecord{},
		statuses: map[string]domain.DocumentStatus{},
	}
	for _, doc := range docs {
		stub.docs[doc.ID] = doc
	}
	return stub
}

func (r *docRepoStub) GetByID(_ context.Context, id string) (domain.DocumentRecord, error) {
	doc, ok := r.docs[id]
	if !ok {
		return domain.DocumentRecord{}, domain.ErrDocumentNotFound
	}
	return doc, nil
}

func (r *docRepoStub) SetStatus(_ context.Context, id string, status domain.DocumentStatus) error {
	r.statuses[id] = status
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
	for _, record := range h.records {
		if record.DocumentID == documentID {
			out = append(out, record)
		}
	}
	return out, nil
}

type extractorStub struct {
	result domain.ExtractionResult
	err    error
}

func (e extractorStub) Extract(context.Context, string, string) (domain.ExtractionResult, error) {
	return e.result, e.err
}

type integrityStub struct {
	report domain.IntegrityReport
	err    error
}

func (i integrityStub) Check(context.Context, string) (domain.IntegrityReport, error) {
	return i.report, i.err
}

func (i integrityStub) FileHash(context.Context, string) (string, error) {
	return i.report.ContentHash, i.err
}

type ledgerStub struct {
	recorded []domain.DocumentVerified
	err      error
}

func (l *ledgerStub) RecordVerification(_ context.Context, ver domain.DocumentVerified) (domain.Block, error) {
	if l.err != nil {
		return domain.Block{}, l.err
	}
	l.recorded = append(l.recorded, ver)
	return domain.Block{Index: len(l.recorded)}, nil
}

type panickingAnalyzer struct{}

func (panickingAnalyzer) Name() string { return "panicky" }

func (panickingAnalyzer) Analyze(analyzer.Input) domain.AnalysisResult {
	panic("boom")
}

func goodDocument() domain.DocumentRecord {
	return domain.DocumentRecord{
		ID:           "doc-1",
		FilePath:     "/data/doc-1.pdf",
		DeclaredType: domain.DocTypeBirthCertificate,
		Status:       domain.DocStatusUploaded,
		Metadata:     domain.DocumentMetadata{RecipientName: "Jane Doe"},
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

func newService(docs *docRepoStub, extractor extractorStub, ledger *ledgerStub) (*VerificationService, *historyStub) {
	history := &historyStub{}
	svc := NewVerificationService(
		docs,
		history,
		extractor,
		integrityStub{report: domain.IntegrityReport{ContentHash: "hash-1", FileSize: 1024}},
		analyzer.Default(),
		ledger,
	)
	return svc, history
}

func TestVerify_AuthenticDocument(t *testing.T) {
	docs := newDocRepoStub(goodDocument())
	ledger := &ledgerStub{}
	svc, history := newService(docs, extractorStub{result: goodExtraction()}, ledger)

	record, err := svc.Verify(context.Background(), VerifyRequest{
		DocumentID: "doc-1",
		VerifierID: "verifier-1",
		Notes:      "routine check",
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !record.IsAuthentic {
		t.Fatalf("expected authentic verdict, got confidence %d flags %v", record.Confidence, record.Flags)
	}
	if record.IsAuthentic != (record.Confidence >= AuthenticThreshold) {
		t.Fatal("threshold law violated")
	}
	if len(record.Analyses) != 5 {
		t.Fatalf("expected 5 analyses, got %d", len(record.Analyses))
	}
	if len(ledger.recorded) != 1 {
		t.Fatalf("expected one ledger append, got %d", len(ledger.recorded))
	}
	if len(history.records) != 1 {
		t.Fatalf("expected one history record, got %d", len(history.records))
	}
	if docs.statuses["doc-1"] != domain.DocStatusVerified {
		t.Fatalf("expected verified status, got %s", docs.statuses["doc-1"])
	}
}

func TestVerify_NotFound(t *testing.T) {
	svc, _ := newService(newDocRepoStub(), extractorStub{result: goodExtraction()}, &ledgerStub{})
	if _, err := svc.Verify(context.Background(), VerifyRequest{DocumentID: "missing"}); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestVerify_FileMissing(t *testing.T) {
	docs := newDocRepoStub(goodDocument())
	svc, _ := newService(docs, extractorStub{result: goodExtraction()}, &ledgerStub{})
	svc.Integrity = integrityStub{err: fs.ErrNotExist}

	if _, err := svc.Verify(context.Background(), VerifyRequest{DocumentID: "doc-1"}); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound for unreachable file, got %v", err)
	}
}

func TestVerify_AlreadyVerified(t *testing.T) {
	doc := goodDocument()
	doc.Status = domain.DocStatusVerified
	docs := newDocRepoStub(doc)
	svc, _ := newService(docs, extractorStub{result: goodExtraction()}, &ledgerStub{})

	if _, err := svc.Verify(context.Background(), VerifyRequest{DocumentID: "doc-1"}); !errors.Is(err, domain.ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}

	record, err := svc.Verify(context.Background(), VerifyRequest{DocumentID: "doc-1", ForceReVerify: true})
	if err != nil {
		t.Fatalf("forced re-verification should run: %v", err)
	}
	if record.DocumentID != "doc-1" {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestVerify_ExtractionFailureFailsClosed(t *testing.T) {
	docs := newDocRepoStub(goodDocument())
	svc, history := newService(docs, extractorStub{result: domain.ExtractionResult{Success: false, Error: "unreadable scan"}}, &ledgerStub{})

	record, err := svc.Verify(context.Background(), VerifyRequest{DocumentID: "doc-1", VerifierID: "verifier-1"})
	if !errors.Is(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
	if record.IsAuthentic || record.Confidence != 0 {
		t.Fatalf("failed verification must be zero-confidence: %+v", record)
	}
	if record.Error == "" {
		t.Fatal("expected explicit error field on the record")
	}
	if len(history.records) != 1 {
		t.Fatal("failed record should still be recorded in history")
	}
	if docs.statuses["doc-1"] != domain.DocStatusRejected {
		t.Fatalf("expected rejected status, got %s", docs.statuses["doc-1"])
	}
}

func TestVerify_AnalyzerPanicIsContained(t *testing.T) {
	docs := newDocRepoStub(goodDocument())
	svc, _ := newService(docs, extractorStub{result: goodExtraction()}, &ledgerStub{})
	svc.Analyzers = append(svc.Analyzers, panickingAnalyzer{})

	record, err := svc.Verify(context.Background(), VerifyRequest{DocumentID: "doc-1"})
	if err != nil {
		t.Fatalf("analyzer panic must not abort the run: %v", err)
	}
	if !hasFlag(record.Flags, domain.AnalyzerFailedFlag("panicky")) {
		t.Fatalf("expected analyzer failure flag, got %v", record.Flags)
	}
	if _, ok := record.Analyses["panicky"]; !ok {
		t.Fatal("expected neutral result slot for failed analyzer")
	}
}

func TestVerify_LedgerFailureIsBestEffort(t *testing.T) {
	docs := newDocRepoStub(goodDocument())
	ledger := &ledgerStub{err: errors.New("mining timeout")}
	svc, _ := newService(docs, extractorStub{result: goodExtraction()}, ledger)

	record, err := svc.Verify(context.Background(), VerifyRequest{DocumentID: "doc-1"})
	if err != nil {
		t.Fatalf("ledger failure must not fail verification: %v", err)
	}
	if !hasFlag(record.Flags, domain.FlagLedgerUnrecorded) {
		t.Fatalf("expected LEDGER_UNRECORDED flag, got %v", record.Flags)
	}
	if record.Confidence == 0 {
		t.Fatal("confidence must be preserved despite ledger failure")
	}
}

func TestVerify_DeterministicAcrossRuns(t *testing.T) {
	docs := newDocRepoStub(goodDocument())
	svc, _ := newService(docs, extractorStub{result: goodExtraction()}, &ledgerStub{})

	first, err := svc.Verify(context.Background(), VerifyRequest{DocumentID: "doc-1"})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	second, err := svc.Verify(context.Background(), VerifyRequest{DocumentID: "doc-1", ForceReVerify: true})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if first.Confidence != second.Confidence || first.IsAuthentic != second.IsAuthentic {
		t.Fatalf("repeated runs must agree: %d vs %d", first.Confidence, second.Confidence)
	}
	if strings.Join(first.Flags, ",") != strings.Join(second.Flags, ",") {
		t.Fatalf("flags must be stable: %v vs %v", first.Flags, second.Flags)
	}
}

func TestBulkVerify_PartialFailure(t *testing.T) {
	docs := newDocRepoStub(goodDocument())
	svc, _ := newService(docs, extractorStub{result: goodExtraction()}, &ledgerStub{})

	result, err := svc.BulkVerify(context.Background(), []string{"doc-1", "missing-doc"}, "verifier-1", "")
	if err != nil {
		t.Fatalf("bulk verify: %v", err)
	}
	if len(result.Succeeded) != 1 {
		t.Fatalf("expected one success, got %d", len(result.Succeeded))
	}
	if len(result.Failed) != 1 || result.Failed[0].DocumentID != "missing-doc" {
		t.Fatalf("expected missing-doc failure, got %+v", result.Failed)
	}
}

func TestBulkVerify_SizeBounds(t *testing.T) {
	svc, _ := newService(newDocRepoStub(), extractorStub{result: goodExtraction()}, &ledgerStub{})

	if _, err := svc.BulkVerify(context.Background(), nil, "verifier-1", ""); !errors.Is(err, domain.ErrBulkSizeInvalid) {
		t.Fatalf("expected size error for empty batch, got %v", err)
	}
	tooMany := make([]string, 51)
	for i := range tooMany {
		tooMany[i] = "doc"
	}
	if _, err := svc.BulkVerify(context.Background(), tooMany, "verifier-1", ""); !errors.Is(err, domain.ErrBulkSizeInvalid) {
		t.Fatalf("expected size error for oversized batch, got %v", err)
	}
}

func TestVerify_HistoryAccumulates(t *testing.T) {
	docs := newDocRepoStub(goodDocument())
	svc, history := newService(docs, extractorStub{result: goodExtraction()}, &ledgerStub{})

	if _, err := svc.Verify(context.Background(), VerifyRequest{DocumentID: "doc-1"}); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if _, err := svc.Verify(context.Background(), VerifyRequest{DocumentID: "doc-1", ForceReVerify: true}); err != nil {
		t.Fatalf("re-verify: %v", err)
	}

	records, err := history.ListByDocument(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected both runs in history, got %d", len(records))
	}
	if records[0].ID == records[1].ID {
		t.Fatal("each run must produce a distinct record")
	}
	if !records[0].CreatedAt.Before(records[1].CreatedAt.Add(time.Nanosecond)) {
		t.Fatal("history must preserve creation order")
	}
}

func hasFlag(flags []string, want string) bool {
	for _, flag := range flags {
		if flag == want {
			return true
		}
	}
	return false
}
