package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/metrics"
)

const (
	DefaultBaseURL = "https://api.razorpay.com"
	defaultTimeout = 30 * time.Second
)

// APIError is a non-2xx answer or a transport failure.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return e.Description
	}
	if e.Code != "" {
		return fmt.Sprintf("razorpay %d %s: %s", e.StatusCode, e.Code, e.Description)
	}
	return fmt.Sprintf("razorpay %d: %s", e.StatusCode, e.Description)
}

// APIStatus is the api_status recorded locally: 502 when the gateway
// rejected the request, 500 for gateway or transport failures.
func (e *APIError) APIStatus() int {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func apiStatusOf(err error) int {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.APIStatus()
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// client is a thin REST client over the razorpay v1 API with basic auth.
type client struct {
	baseURL   string
	keyID     string
	keySecret string
	timeout   time.Duration
	http      *http.Client
	metrics   *metrics.PaymentMetrics
}

func (c *client) get(ctx context.Context, op, path string, out any) (json.RawMessage, error) {
	return c.do(ctx, op, http.MethodGet, path, nil, out)
}

func (c *client) post(ctx context.Context, op, path string, body, out any) (json.RawMessage, error) {
	return c.do(ctx, op, http.MethodPost, path, body, out)
}

func (c *client) patch(ctx context.Context, op, path string, body, out any) (json.RawMessage, error) {
	return c.do(ctx, op, http.MethodPatch, path, body, out)
}

func (c *client) do(ctx context.Context, op, method, path string, body, out any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, op, out)
}

// upload posts a multipart form with one file part.
func (c *client) upload(ctx context.Context, op, path string, fields map[string]string, fileField, fileName string, content []byte, out any) (json.RawMessage, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := form.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	part, err := form.CreateFormFile(fileField, fileName)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	return c.send(req, op, out)
}

func (c *client) send(req *http.Request, op string, out any) (raw json.RawMessage, err error) {
	start := time.Now()
	defer func() {
		c.metrics.RecordGatewayRequest(driverName, op, err, time.Since(start))
	}()

	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{Description: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Description: fmt.Sprintf("failed to read response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Error.Description != "" {
			apiErr.Code = eb.Error.Code
			apiErr.Description = eb.Error.Description
		} else {
			apiErr.Description = strings.TrimSpace(string(data))
		}
		return nil, apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return nil, fmt.Errorf("failed to decode %s response: %w", op, err)
		}
	}
	return data, nil
}

// touch issues an unauthenticated GET and discards the answer.
func (c *client) touch(ctx context.Context, url string) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
