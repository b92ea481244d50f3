package ledger

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
)

const genesisPreviousHash = "0"

// Ledger is the process-wide append-only chain. Append serializes the
// read-tail, seal, attach sequence under one writer lock; read paths copy
// under the read lock and never observe a partially attached block.
type Ledger struct {
	mu     sync.RWMutex
	blocks []domain.Block
	sealer Sealer
	now    func() time.Time

	// SealTimeout bounds a single nonce search. Zero means the caller's
	// context is the only bound. Set once before serving traffic.
	SealTimeout time.Duration
}

func New(sealer Sealer, now func() time.Time) *Ledger {
	if sealer == nil {
		sealer = TrivialSealer{}
	}
	if now == nil {
		now = time.Now
	}
	l := &Ledger{sealer: sealer, now: now}
	genesis := domain.Block{
		Index:        0,
		Timestamp:    now().UTC(),
		PreviousHash: genesisPreviousHash,
		Nonce:        0,
	}
	genesis.Hash = blockHash(genesis.Timestamp, nil, genesis.PreviousHash, genesis.Nonce)
	l.blocks = append(l.blocks, genesis)
	return l
}

// Append seals the given transactions into a new block on the current tail.
// The transaction list must be non-empty; the sealed block is returned.
func (l *Ledger) Append(ctx context.Context, txs []domain.Transaction) (domain.Block, error) {
	if len(txs) == 0 {
		return domain.Block{}, domain.ErrEmptyTransactions
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tail := l.blocks[len(l.blocks)-1]
	block := domain.Block{
		Index:        len(l.blocks),
		Timestamp:    l.now().UTC(),
		Transactions: copyTransactions(txs),
		PreviousHash: tail.Hash,
	}
	if l.SealTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.SealTimeout)
		defer cancel()
	}
	if err := l.sealer.Seal(ctx, &block); err != nil {
		return domain.Block{}, fmt.Errorf("%w: %v", domain.ErrLedgerAppend, err)
	}
	l.blocks = append(l.blocks, block)
	log.Printf("ledger: sealed block %d hash=%s txs=%d", block.Index, block.Hash, len(block.Transactions))
	return block, nil
}

// RegisterDocument appends a document_registered transaction.
func (l *Ledger) RegisterDocument(ctx context.Context, reg domain.DocumentRegistered) (domain.Block, error) {
	tx := domain.Transaction{
		ID:         uuid.NewString(),
		Kind:       domain.TxDocumentRegistered,
		Timestamp:  l.now().UTC(),
		Registered: &reg,
	}
	return l.Append(ctx, []domain.Transaction{tx})
}

// RecordVerification appends a document_verified transaction carrying a
// content fingerprint of the verification outcome.
func (l *Ledger) RecordVerification(ctx context.Context, ver domain.DocumentVerified) (domain.Block, error) {
	at := l.now().UTC()
	if ver.VerificationHash == "" {
		ver.VerificationHash = verificationHash(ver, at)
	}
	tx := domain.Transaction{
		ID:        uuid.NewString(),
		Kind:      domain.TxDocumentVerified,
		Timestamp: at,
		Verified:  &ver,
	}
	return l.Append(ctx, []domain.Transaction{tx})
}

// FindByContentHash scans for the first registration of the given content
// hash. Genesis carries no transactions and is skipped.
func (l *Ledger) FindByContentHash(contentHash string) (domain.RegistrationInfo, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := 1; i < len(l.blocks); i++ {
		block := l.blocks[i]
		for _, tx := range block.Transactions {
			switch tx.Kind {
			case domain.TxDocumentRegistered:
				if tx.Registered != nil && tx.Registered.ContentHash == contentHash {
					return domain.RegistrationInfo{
						BlockIndex: block.Index,
						BlockHash:  block.Hash,
						DocumentID: tx.Registered.DocumentID,
						IssuerID:   tx.Registered.IssuerID,
						Timestamp:  tx.Timestamp,
						Metadata:   copyMetadata(tx.Registered.Metadata),
					}, true
				}
			case domain.TxDocumentVerified:
			}
		}
	}
	return domain.RegistrationInfo{}, false
}

// HistoryFor returns every recorded verification of a document in chain
// order, oldest first.
func (l *Ledger) HistoryFor(documentID string) []domain.VerificationEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var events []domain.VerificationEvent
	for i := 1; i < len(l.blocks); i++ {
		block := l.blocks[i]
		for _, tx := range block.Transactions {
			switch tx.Kind {
			case domain.TxDocumentRegistered:
			case domain.TxDocumentVerified:
				if tx.Verified != nil && tx.Verified.DocumentID == documentID {
					events = append(events, domain.VerificationEvent{
						BlockIndex:       block.Index,
						BlockHash:        block.Hash,
						DocumentID:       tx.Verified.DocumentID,
						VerifierID:       tx.Verified.VerifierID,
						IsAuthentic:      tx.Verified.IsAuthentic,
						Confidence:       tx.Verified.Confidence,
						Timestamp:        tx.Timestamp,
						VerificationHash: tx.Verified.VerificationHash,
					})
				}
			}
		}
	}
	return events
}

// Validate walks the chain from index 1, recomputing each block's hash and
// checking linkage to its predecessor. Genesis is exempt.
func (l *Ledger) Validate() domain.ChainValidation {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.validateLocked()
}

func (l *Ledger) validateLocked() domain.ChainValidation {
	for i := 1; i < len(l.blocks); i++ {
		current := l.blocks[i]
		previous := l.blocks[i-1]

		recomputed := blockHash(current.Timestamp, current.Transactions, current.PreviousHash, current.Nonce)
		if recomputed != current.Hash {
			return domain.ChainValidation{
				Valid:       false,
				FailedIndex: i,
				Reason:      fmt.Sprintf("stored hash does not recompute at block %d", i),
			}
		}
		if current.PreviousHash != previous.Hash {
			return domain.ChainValidation{
				Valid:       false,
				FailedIndex: i,
				Reason:      fmt.Sprintf("previous hash linkage broken at block %d", i),
			}
		}
	}
	return domain.ChainValidation{Valid: true, FailedIndex: -1}
}

// Stats aggregates chain counts plus a full validation pass. Both run under
// one read lock so the counts and ChainValid describe the same chain state.
func (l *Ledger) Stats() domain.ChainStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	validation := l.validateLocked()
	stats := domain.ChainStats{
		TotalBlocks: len(l.blocks),
		ChainValid:  validation.Valid,
	}
	for _, block := range l.blocks {
		stats.TotalTransactions += len(block.Transactions)
		for _, tx := range block.Transactions {
			switch tx.Kind {
			case domain.TxDocumentRegistered:
				stats.Registrations++
			case domain.TxDocumentVerified:
				stats.Verifications++
			}
		}
	}
	return stats
}

// Blocks returns a deep copy of the chain for diagnostics.
func (l *Ledger) Blocks() []domain.Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Block, len(l.blocks))
	copy(out, l.blocks)
	for i := range out {
		out[i].Transactions = copyTransactions(out[i].Transactions)
	}
	return out
}

func copyTransactions(txs []domain.Transaction) []domain.Transaction {
	if len(txs) == 0 {
		return nil
	}
	out := make([]domain.Transaction, len(txs))
	copy(out, txs)
	for i := range out {
		if out[i].Registered != nil {
			reg := *out[i].Registered
			reg.Metadata = copyMetadata(reg.Metadata)
			out[i].Registered = &reg
		}
		if out[i].Verified != nil {
			ver := *out[i].Verified
			out[i].Verified = &ver
		}
	}
	return out
}

func copyMetadata(metadata map[string]string) map[string]string {
	if metadata == nil {
		return nil
	}
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
