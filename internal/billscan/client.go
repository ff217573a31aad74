// Package billscan talks to the receipt OCR service that turns a photo of a
// bill into a prefilled expense.
package billscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/mmynk/triplan/internal/calculator"
	"github.com/mmynk/triplan/internal/metrics"
	"github.com/mmynk/triplan/internal/models"
)

const extractPath = "/extract-info/"

// ErrScanFailed is returned when the service is unreachable or rejects the image.
var ErrScanFailed = errors.New("bill scan failed")

// Result is what the service could read off the receipt. Empty fields were
// not recognised.
type Result struct {
	Date   string
	Time   string
	Amount float64
	Items  []models.BillItem
}

// extractResponse is the wire shape. items is either a list of names, a
// name to count map or a list of {name, count}.
type extractResponse struct {
	Date   string              `json:"date"`
	Time   string              `json:"time"`
	Amount decimal.NullDecimal `json:"amount"`
	Items  json.RawMessage     `json:"items"`
}

// Client calls the bill-scan service. Calls are never retried; the user
// can simply scan again.
type Client struct {
	http *resty.Client
}

// New creates a client for the service at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	return &Client{http: c}
}

// Extract uploads the image as multipart field "file".
func (c *Client) Extract(ctx context.Context, filename string, image io.Reader) (*Result, error) {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, image).
		Post(extractPath)
	if err != nil {
		metrics.BillScansTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrScanFailed, err)
	}
	if resp.IsError() {
		metrics.BillScansTotal.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: status %d: %s", ErrScanFailed, resp.StatusCode(), resp.String())
	}

	var er extractResponse
	if err := json.Unmarshal(resp.Body(), &er); err != nil {
		metrics.BillScansTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: decode response: %v", ErrScanFailed, err)
	}
	items, err := calculator.NormalizeBillItems(er.Items)
	if err != nil {
		metrics.BillScansTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrScanFailed, err)
	}

	result := &Result{Date: er.Date, Time: er.Time, Items: items}
	if er.Amount.Valid {
		result.Amount = er.Amount.Decimal.InexactFloat64()
	}

	metrics.BillScansTotal.WithLabelValues("ok").Inc()
	slog.Debug("Bill scanned",
		"filename", filename,
		"items", len(items),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}
