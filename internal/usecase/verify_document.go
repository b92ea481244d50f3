package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/analyzer"
	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
)

// VerifyState names the stages of a verification run. FAILED is absorbing:
// once entered the run produces a zero-confidence record and stops.
type VerifyState string

const (
	StateReceived     VerifyState = "RECEIVED"
	StateExtracting   VerifyState = "EXTRACTING"
	StateAnalyzing    VerifyState = "ANALYZING"
	StateAggregating  VerifyState = "AGGREGATING"
	StateLedgerAppend VerifyState = "LEDGER_APPEND"
	StateDone         VerifyState = "DONE"
	StateFailed       VerifyState = "FAILED"
)

type VerifyRequest struct {
	DocumentID    string
	VerifierID    string
	Notes         string
	ForceReVerify bool
}

// VerificationService drives a verification run end to end: integrity probe,
// extraction, analyzer fan-out, aggregation, optional review policy, and
// best-effort ledger append.
type VerificationService struct {
	Docs      DocumentRepository
	History   VerificationRepository
	Extractor TextExtractor
	Integrity IntegrityChecker
	Analyzers []analyzer.Analyzer
	Ledger    VerificationLedger
	Cache     ResultCache
	CacheTTL  time.Duration
	Policy    ReviewPolicy

	now func() time.Time
}

func NewVerificationService(
	docs DocumentRepository,
	history VerificationRepository,
	extractor TextExtractor,
	integrity IntegrityChecker,
	analyzers []analyzer.Analyzer,
	ledger VerificationLedger,
) *VerificationService {
	if len(analyzers) == 0 {
		analyzers = analyzer.Default()
	}
	return &VerificationService{
		Docs:      docs,
		History:   history,
		Extractor: extractor,
		Integrity: integrity,
		Analyzers: analyzers,
		Ledger:    ledger,
		now:       time.Now,
	}
}

// Verify runs the full pipeline for one document. On extraction failure it
// returns both a zero-confidence record and domain.ErrExtractionFailed so
// callers get a structured result, never a silent default pass.
func (s *VerificationService) Verify(ctx context.Context, req VerifyRequest) (domain.VerificationRecord, error) {
	state := StateReceived
	log.Printf("verify: document %s state=%s", req.DocumentID, state)

	doc, err := s.Docs.GetByID(ctx, req.DocumentID)
	if err != nil {
		return domain.VerificationRecord{}, err
	}
	if doc.Status == domain.DocStatusVerified && !req.ForceReVerify {
		return domain.VerificationRecord{}, domain.ErrAlreadyVerified
	}

	report, err := s.Integrity.Check(ctx, doc.FilePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.VerificationRecord{}, fmt.Errorf("%w: file missing at %s", domain.ErrDocumentNotFound, doc.FilePath)
		}
		return domain.VerificationRecord{}, fmt.Errorf("%w: %v", domain.ErrDocumentUnreadable, err)
	}

	cacheKey := report.ContentHash
	if s.Cache != nil && cacheKey != "" && !req.ForceReVerify {
		if cached, ok, err := s.Cache.Get(ctx, cacheKey); err == nil && ok {
			log.Printf("verify: cache hit for document %s", req.DocumentID)
			return *cached, nil
		}
	}

	state = StateExtracting
	log.Printf("verify: document %s state=%s", req.DocumentID, state)
	extraction, err := s.Extractor.Extract(ctx, doc.FilePath, mimeTypeFor(doc.FilePath))
	if err != nil || !extraction.Success {
		state = StateFailed
		detail := extraction.Error
		if err != nil {
			detail = err.Error()
		}
		log.Printf("verify: document %s state=%s: %s", req.DocumentID, state, detail)
		record := s.failedRecord(doc, req, fmt.Sprintf("extraction failed: %s", detail))
		s.persist(ctx, doc, record)
		return record, fmt.Errorf("%w: %s", domain.ErrExtractionFailed, detail)
	}

	state = StateAnalyzing
	log.Printf("verify: document %s state=%s", req.DocumentID, state)
	analyses, failureFlags := s.runAnalyzers(analyzer.Input{
		Text:         extraction.Text,
		DocumentType: doc.DeclaredType,
		Metadata:     doc.Metadata,
	})

	state = StateAggregating
	log.Printf("verify: document %s state=%s", req.DocumentID, state)
	aggregate := AggregateScore(AggregateInput{
		OCRConfidence: extraction.Confidence,
		Structure:     analyses[domain.AnalyzerStructure],
		Content:       analyses[domain.AnalyzerContent],
		Metadata:      analyses[domain.AnalyzerMetadata],
		Fraud:         analyses[domain.AnalyzerFraud],
		Statistical:   analyses[domain.AnalyzerStatistical],
		FileCorrupted: report.IsCorrupted,
	})

	flagSet := make(map[string]struct{})
	for _, result := range analyses {
		for _, flag := range result.Flags {
			flagSet[flag] = struct{}{}
		}
	}
	for _, flag := range failureFlags {
		flagSet[flag] = struct{}{}
	}
	if report.IsCorrupted {
		flagSet[domain.FlagFileCorrupted] = struct{}{}
	}

	record := domain.VerificationRecord{
		ID:          uuid.NewString(),
		DocumentID:  doc.ID,
		IsAuthentic: aggregate.IsAuthentic,
		Confidence:  aggregate.Confidence,
		Analyses:    analyses,
		Impacts:     aggregate.Impacts,
		VerifierID:  req.VerifierID,
		Notes:       req.Notes,
		CreatedAt:   s.now().UTC(),
	}

	if s.Policy != nil {
		decision, err := s.Policy.Evaluate(ctx, domain.ReviewInput{
			DocumentType: doc.DeclaredType,
			Confidence:   record.Confidence,
			IsAuthentic:  record.IsAuthentic,
			Flags:        sortedFlags(flagSet),
		})
		if err != nil {
			log.Printf("verify: review policy error for document %s: %v", req.DocumentID, err)
		} else if decision.RequireReview {
			record.NeedsReview = true
			for _, reason := range decision.Reasons {
				if reason != "" {
					flagSet[reason] = struct{}{}
				}
			}
		}
	}

	state = StateLedgerAppend
	log.Printf("verify: document %s state=%s", req.DocumentID, state)
	if s.Ledger != nil {
		_, err := s.Ledger.RecordVerification(ctx, domain.DocumentVerified{
			DocumentID:  doc.ID,
			VerifierID:  req.VerifierID,
			IsAuthentic: record.IsAuthentic,
			Confidence:  record.Confidence,
		})
		if err != nil {
			// Best-effort auditing: the computed record stands.
			log.Printf("verify: ledger append failed for document %s: %v", req.DocumentID, err)
			flagSet[domain.FlagLedgerUnrecorded] = struct{}{}
		}
	}

	record.Flags = sortedFlags(flagSet)
	s.persist(ctx, doc, record)

	if s.Cache != nil && cacheKey != "" {
		if err := s.Cache.Put(ctx, cacheKey, record, s.CacheTTL); err != nil {
			log.Printf("verify: cache put failed: %v", err)
		}
	}

	state = StateDone
	log.Printf("verify: document %s state=%s confidence=%d authentic=%t", req.DocumentID, state, record.Confidence, record.IsAuthentic)
	return record, nil
}

// runAnalyzers fans the analyzers out concurrently and joins on all of them.
// A panicking analyzer contributes a neutral zero result plus a failure flag
// instead of aborting the run.
func (s *VerificationService) runAnalyzers(input analyzer.Input) (map[string]domain.AnalysisResult, []string) {
	type slot struct {
		result domain.AnalysisResult
		failed bool
		name   string
	}
	slots := make([]slot, len(s.Analyzers))

	done := make(chan int, len(s.Analyzers))
	for i, a := range s.Analyzers {
		go func(i int, a analyzer.Analyzer) {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("verify: analyzer %s panicked: %v", a.Name(), r)
					slots[i] = slot{
						result: domain.AnalysisResult{Analyzer: a.Name()},
						failed: true,
						name:   a.Name(),
					}
				}
				done <- i
			}()
			slots[i] = slot{result: a.Analyze(input), name: a.Name()}
		}(i, a)
	}
	for range s.Analyzers {
		<-done
	}

	analyses := make(map[string]domain.AnalysisResult, len(slots))
	var failureFlags []string
	for _, sl := range slots {
		analyses[sl.name] = sl.result
		if sl.failed {
			failureFlags = append(failureFlags, domain.AnalyzerFailedFlag(sl.name))
		}
	}
	return analyses, failureFlags
}

func (s *VerificationService) failedRecord(doc domain.DocumentRecord, req VerifyRequest, reason string) domain.VerificationRecord {
	return domain.VerificationRecord{
		ID:          uuid.NewString(),
		DocumentID:  doc.ID,
		IsAuthentic: false,
		Confidence:  0,
		VerifierID:  req.VerifierID,
		Notes:       req.Notes,
		Error:       reason,
		CreatedAt:   s.now().UTC(),
	}
}

// persist writes the record into history and moves the document status.
// Persistence failures are logged, not fatal: the record was computed and is
// returned to the caller regardless.
func (s *VerificationService) persist(ctx context.Context, doc domain.DocumentRecord, record domain.VerificationRecord) {
	if s.History != nil {
		if err := s.History.Append(ctx, record); err != nil {
			log.Printf("verify: history append failed for document %s: %v", doc.ID, err)
		}
	}
	if s.Docs != nil {
		status := domain.DocStatusRejected
		if record.IsAuthentic {
			status = domain.DocStatusVerified
		}
		if err := s.Docs.SetStatus(ctx, doc.ID, status); err != nil {
			log.Printf("verify: status update failed for document %s: %v", doc.ID, err)
		}
	}
}

func sortedFlags(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	flags := make([]string, 0, len(set))
	for flag := range set {
		flags = append(flags, flag)
	}
	sort.Strings(flags)
	return flags
}

func mimeTypeFor(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
