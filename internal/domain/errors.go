package domain

import "errors"

var (
	ErrDocumentNotFound   = errors.New("document not found")
	ErrDocumentUnreadable = errors.New("document file unreadable")
	ErrAlreadyVerified    = errors.New("document already verified")
	ErrExtractionFailed   = errors.New("text extraction failed")
	ErrLedgerAppend       = errors.New("ledger append failed")
	ErrEmptyTransactions  = errors.New("transaction list is empty")
	ErrChainIntegrity     = errors.New("chain integrity violation")
	ErrBulkSizeInvalid    = errors.New("bulk verification accepts between 1 and 50 documents")
)
