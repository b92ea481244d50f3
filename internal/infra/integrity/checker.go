// Package integrity probes document files on local disk: size, modification
// time, readability, and the SHA-256 content hash that joins storage rows to
// ledger registrations.
package integrity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
)

type Checker struct{}

func NewChecker() Checker { return Checker{} }

// Check stats and hashes the file. A missing file is an error (the caller
// treats it as not found); a file that stats but cannot be read is reported
// as corrupted, not as an error, so verification can proceed fail-closed.
func (Checker) Check(ctx context.Context, filePath string) (domain.IntegrityReport, error) {
	if err := ctx.Err(); err != nil {
		return domain.IntegrityReport{}, err
	}
	info, err := os.Stat(filePath)
	if err != nil {
		return domain.IntegrityReport{}, fmt.Errorf("stat %s: %w", filePath, err)
	}

	report := domain.IntegrityReport{
		FileSize:     info.Size(),
		LastModified: info.ModTime(),
	}

	hash, err := hashFile(filePath)
	if err != nil {
		report.IsCorrupted = true
		return report, nil
	}
	report.ContentHash = hash
	return report, nil
}

func (Checker) FileHash(ctx context.Context, filePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return hashFile(filePath)
}

func hashFile(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
