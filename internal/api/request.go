package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIError represents an error response from the ORACLE Alpha API.
type APIError struct {
	StatusCode int
	Reason     string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("oracle api error %d: %s", e.StatusCode, e.Reason)
}

// queryString builds a query string with parameters kept in insertion order.
// The API pins exact parameter ordering (minScore before limit), so
// url.Values.Encode, which sorts keys, cannot be used.
type queryString struct {
	buf strings.Builder
}

func (q *queryString) add(key, value string) {
	if q.buf.Len() > 0 {
		q.buf.WriteByte('&')
	}
	q.buf.WriteString(url.QueryEscape(key))
	q.buf.WriteByte('=')
	q.buf.WriteString(url.QueryEscape(value))
}

func (q *queryString) addInt(key string, value int) {
	q.add(key, strconv.Itoa(value))
}

func (q *queryString) String() string {
	return q.buf.String()
}

// statusReason extracts the reason phrase from a response status line,
// falling back to the canonical text when the server sent none.
func statusReason(resp *http.Response) string {
	if _, reason, ok := strings.Cut(resp.Status, " "); ok && reason != "" {
		return reason
	}
	return http.StatusText(resp.StatusCode)
}

// doRequest performs one HTTP request and returns the raw response body.
// Failures are never retried; they surface directly to the caller.
func (c *Client) doRequest(ctx context.Context, op, method, path, rawQuery string, body any) ([]byte, error) {
	fullURL := c.baseURL + path
	if rawQuery != "" {
		fullURL += "?" + rawQuery
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if hv := c.credential.HeaderValue(); hv != "" {
		req.Header.Set("Authorization", hv)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.observe(op, 0, elapsed)
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	c.observe(op, resp.StatusCode, elapsed)
	c.logger.Debug("api request",
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"elapsed", elapsed,
	)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Reason:     statusReason(resp),
			Body:       respBody,
		}
	}

	return respBody, nil
}

func (c *Client) observe(op string, status int, elapsed time.Duration) {
	if c.metrics != nil {
		c.metrics.ObserveRequest(op, status, elapsed)
	}
}

// get performs a GET request and decodes the JSON response into result.
func (c *Client) get(ctx context.Context, op, path, rawQuery string, result any) error {
	body, err := c.doRequest(ctx, op, http.MethodGet, path, rawQuery, nil)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

// post performs a POST request with an optional JSON body and decodes the
// JSON response into result.
func (c *Client) post(ctx context.Context, op, path string, body, result any) error {
	respBody, err := c.doRequest(ctx, op, http.MethodPost, path, "", body)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}
