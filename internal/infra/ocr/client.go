// Package ocr talks to the text-extraction sidecar over HTTP. The sidecar
// owns the actual OCR engine; this client only ships a file path and mime
// type across and maps the reply into a domain.ExtractionResult.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
)

const maxExtractRespBytes = 4 * 1024 * 1024

type Client struct {
	baseURL string
	httpDo  func(*http.Request) (*http.Response, error)
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("ocr base url is required")
	}
	httpClient := &http.Client{Timeout: timeout}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpDo:  httpClient.Do,
	}, nil
}

type extractRequest struct {
	FilePath string `json:"file_path"`
	MimeType string `json:"mime_type"`
}

type extractResponse struct {
	Success    bool    `json:"success"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	WordCount  int     `json:"word_count"`
	Error      string  `json:"error"`
}

// Extract never returns a transport error as a hard failure on its own: a
// reply the sidecar itself marks unsuccessful comes back as a failed
// ExtractionResult with a nil error, so callers can fail closed uniformly.
func (c *Client) Extract(ctx context.Context, filePath, mimeType string) (domain.ExtractionResult, error) {
	body, err := json.Marshal(extractRequest{FilePath: filePath, MimeType: mimeType})
	if err != nil {
		return domain.ExtractionResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", bytes.NewReader(body))
	if err != nil {
		return domain.ExtractionResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpDo(req)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxExtractRespBytes))
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("ocr response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.ExtractionResult{}, fmt.Errorf("ocr status %d", resp.StatusCode)
	}

	var decoded extractResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("ocr decode: %w", err)
	}

	return domain.ExtractionResult{
		Success:    decoded.Success,
		Text:       decoded.Text,
		Confidence: decoded.Confidence,
		WordCount:  decoded.WordCount,
		Error:      decoded.Error,
	}, nil
}
