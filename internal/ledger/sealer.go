package ledger

import (
	"context"
	"strings"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
)

// Sealer finalizes a candidate block: it must set Nonce and Hash such that
// the block hash recomputes under blockHash. The chain-linking invariant does
// not depend on which sealer produced a block.
type Sealer interface {
	Seal(ctx context.Context, block *domain.Block) error
}

// ProofOfWorkSealer searches nonces from zero until the hex hash carries the
// configured number of leading zero characters. The search is CPU-bound and
// unbounded in the worst case; it honors ctx cancellation.
type ProofOfWorkSealer struct {
	Difficulty int
}

func (s ProofOfWorkSealer) Seal(ctx context.Context, block *domain.Block) error {
	difficulty := s.Difficulty
	if difficulty < 1 {
		difficulty = 1
	}
	prefix := strings.Repeat("0", difficulty)
	for nonce := 0; ; nonce++ {
		if nonce&0x3ff == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		block.Nonce = nonce
		block.Hash = blockHash(block.Timestamp, block.Transactions, block.PreviousHash, nonce)
		if strings.HasPrefix(block.Hash, prefix) {
			return nil
		}
	}
}

// TrivialSealer fixes nonce 0 and skips the work search. Used in tests and
// low-latency deployments where tamper evidence comes from the hash linkage
// alone, not from recomputation cost.
type TrivialSealer struct{}

func (TrivialSealer) Seal(_ context.Context, block *domain.Block) error {
	block.Nonce = 0
	block.Hash = blockHash(block.Timestamp, block.Transactions, block.PreviousHash, 0)
	return nil
}
