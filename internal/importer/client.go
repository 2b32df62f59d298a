package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// retryableStatus lists the CRM responses that get the order re-queued.
var retryableStatus = map[int]bool{
	400: true, 401: true, 403: true, 404: true,
	500: true, 502: true, 503: true, 504: true,
}

// Result of one submission attempt. Retryable covers both retryable statuses
// and transport errors.
type Result struct {
	StatusCode int
	ErrorCode  string
	Success    bool
	Retryable  bool
	Err        string
}

type Client struct {
	http   *http.Client
	logger zerolog.Logger
}

func NewClient(timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Submit posts one order payload to the CRM.
func (c *Client) Submit(ctx context.Context, url string, p Payload) *Result {
	body, err := json.Marshal(p)
	if err != nil {
		return &Result{Err: err.Error(), Retryable: false}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &Result{Err: err.Error(), Retryable: false}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &Result{Err: err.Error(), Retryable: true}
	}
	defer resp.Body.Close()

	var decoded struct {
		ErrorCode string `json:"errorCode"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)

	if retryableStatus[resp.StatusCode] {
		return &Result{
			StatusCode: resp.StatusCode,
			ErrorCode:  decoded.ErrorCode,
			Retryable:  true,
			Err:        fmt.Sprintf("HTTP %d error", resp.StatusCode),
		}
	}

	return &Result{
		StatusCode: resp.StatusCode,
		ErrorCode:  decoded.ErrorCode,
		Success:    true,
	}
}
