package libhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const maxErrorBody = 512

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Call performs a JSON request and decodes the response body into T. body is
// JSON-encoded when non-nil; query is appended to the URL.
func Call[T any](
	ctx context.Context,
	method, rawURL string,
	headers map[string]string,
	body any,
	query map[string]string,
) (T, error) {
	return CallWith[T](ctx, http.DefaultClient, method, rawURL, headers, body, query)
}

func CallWith[T any](
	ctx context.Context,
	client *http.Client,
	method, rawURL string,
	headers map[string]string,
	body any,
	query map[string]string,
) (T, error) {
	var zero T

	u, err := url.Parse(rawURL)
	if err != nil {
		return zero, fmt.Errorf("failed to parse url: %w", err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("failed to marshal body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return zero, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := client.Do(req)
	if err != nil {
		return zero, fmt.Errorf("failed to do request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return zero, &StatusError{Code: res.StatusCode, Body: string(msg)}
	}

	var out T
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return zero, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}
