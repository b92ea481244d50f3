package ledger

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"time"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
)

// Canonical encoding version. Block hashes cover this encoding, so any change
// to the serialization below must bump the version and invalidates every
// previously sealed chain.
const codecVersion = "tx.v1"

// blockHash computes the block seal input: timestamp, the canonical encoding
// of the transaction list, the previous hash and the nonce, concatenated in
// that fixed order.
func blockHash(timestamp time.Time, txs []domain.Transaction, previousHash string, nonce int) string {
	buf := &bytes.Buffer{}
	buf.WriteString(strconv.FormatInt(timestamp.UTC().UnixMilli(), 10))
	buf.Write(encodeTransactions(txs))
	buf.WriteString(previousHash)
	buf.WriteString(strconv.Itoa(nonce))
	return sha256Hex(buf.Bytes())
}

// encodeTransactions renders the transaction list as canonical JSON: fixed
// key order, no whitespace, timestamps as UTC RFC3339Nano.
func encodeTransactions(txs []domain.Transaction) []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte('[')
	for i, tx := range txs {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodeTransaction(buf, tx)
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

func encodeTransaction(buf *bytes.Buffer, tx domain.Transaction) {
	buf.WriteByte('{')
	writeKV(buf, "id", tx.ID, false)
	writeKV(buf, "kind", string(tx.Kind), false)
	switch tx.Kind {
	case domain.TxDocumentRegistered:
		reg := tx.Registered
		if reg == nil {
			reg = &domain.DocumentRegistered{}
		}
		writeKV(buf, "r.content_hash", reg.ContentHash, false)
		writeKV(buf, "r.document_id", reg.DocumentID, false)
		writeKV(buf, "r.issuer_id", reg.IssuerID, false)
		writeMetadata(buf, "r.metadata", reg.Metadata)
		writeKV(buf, "r.recipient_id", reg.RecipientID, false)
	case domain.TxDocumentVerified:
		ver := tx.Verified
		if ver == nil {
			ver = &domain.DocumentVerified{}
		}
		writeKVBool(buf, "v.authentic", ver.IsAuthentic, false)
		writeKVNumber(buf, "v.confidence", int64(ver.Confidence), false)
		writeKV(buf, "v.document_id", ver.DocumentID, false)
		writeKV(buf, "v.verification_hash", ver.VerificationHash, false)
		writeKV(buf, "v.verifier_id", ver.VerifierID, false)
	}
	writeKV(buf, "ts", tx.Timestamp.UTC().Format(time.RFC3339Nano), false)
	writeKV(buf, "v", codecVersion, true)
	buf.WriteByte('}')
}

func writeMetadata(buf *bytes.Buffer, key string, metadata map[string]string) {
	writeJSONString(buf, key)
	buf.WriteByte(':')
	buf.WriteByte('{')
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		writeKV(buf, k, metadata[k], i == len(keys)-1)
	}
	buf.WriteByte('}')
	buf.WriteByte(',')
}

// verificationHash fingerprints the verification payload itself, independent
// of block placement, so the same outcome recorded twice is detectable.
func verificationHash(ver domain.DocumentVerified, at time.Time) string {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	writeKVBool(buf, "authentic", ver.IsAuthentic, false)
	writeKVNumber(buf, "confidence", int64(ver.Confidence), false)
	writeKV(buf, "document_id", ver.DocumentID, false)
	writeKV(buf, "ts", at.UTC().Format(time.RFC3339Nano), false)
	writeKV(buf, "verifier_id", ver.VerifierID, true)
	buf.WriteByte('}')
	return sha256Hex(buf.Bytes())
}

func sha256Hex(input []byte) string {
	sum := sha256.Sum256(input)
	return hex.EncodeToString(sum[:])
}

func writeKV(buf *bytes.Buffer, key, value string, last bool) {
	writeJSONString(buf, key)
	buf.WriteByte(':')
	writeJSONString(buf, value)
	if !last {
		buf.WriteByte(',')
	}
}

func writeKVNumber(buf *bytes.Buffer, key string, value int64, last bool) {
	writeJSONString(buf, key)
	buf.WriteByte(':')
	buf.WriteString(strconv.FormatInt(value, 10))
	if !last {
		buf.WriteByte(',')
	}
}

func writeKVBool(buf *bytes.Buffer, key string, value bool, last bool) {
	writeJSONString(buf, key)
	buf.WriteByte(':')
	buf.WriteString(strconv.FormatBool(value))
	if !last {
		buf.WriteByte(',')
	}
}

func writeJSONString(buf *bytes.Buffer, value string) {
	buf.WriteByte('"')
	for _, r := range value {
		switch r {
		case '"', '\\':
			buf.WriteByte('\\')
			buf.WriteRune(r)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				buf.WriteString(`\u00`)
				buf.WriteByte(hexLower[r>>4])
				buf.WriteByte(hexLower[r&0x0f])
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}

var hexLower = []byte("0123456789abcdef")
