package domain

import "time"

type TxKind string

const (
	TxDocumentRegistered TxKind = "document_registered"
	TxDocumentVerified   TxKind = "document_verified"
)

// Transaction is a tagged union: exactly one of Registered or Verified is set,
// matching Kind. Once embedded in a sealed block it is immutable.
type Transaction struct {
	ID         string
	Kind       TxKind
	Timestamp  time.Time
	Registered *DocumentRegistered
	Verified   *DocumentVerified
}

type DocumentRegistered struct {
	DocumentID  string
	ContentHash string
	IssuerID    string
	RecipientID string
	Metadata    map[string]string
}

type DocumentVerified struct {
	DocumentID       string
	VerifierID       string
	IsAuthentic      bool
	Confidence       int
	VerificationHash string
}

// Block is one sealed unit of the chain. Hash covers timestamp, the canonical
// transaction encoding, PreviousHash and Nonce; changing any of them after
// sealing breaks validation.
type Block struct {
	Index        int
	Timestamp    time.Time
	Transactions []Transaction
	PreviousHash string
	Nonce        int
	Hash         string
}

// RegistrationInfo is the result of a content-hash lookup.
type RegistrationInfo struct {
	BlockIndex int
	BlockHash  string
	DocumentID string
	IssuerID   string
	Timestamp  time.Time
	Metadata   map[string]string
}

// VerificationEvent is one ledger-recorded verification, in chain order.
type VerificationEvent struct {
	BlockIndex       int
	BlockHash        string
	DocumentID       string
	VerifierID       string
	IsAuthentic      bool
	Confidence       int
	Timestamp        time.Time
	VerificationHash string
}

// ChainValidation reports the first block at which integrity fails.
// FailedIndex is -1 when the chain is valid.
type ChainValidation struct {
	Valid       bool
	FailedIndex int
	Reason      string
}

type ChainStats struct {
	TotalBlocks       int
	TotalTransactions int
	Registrations     int
	Verifications     int
	ChainValid        bool
}
