// Package upstream talks to the REST backend that owns book records.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"bookstore-proxy/internal/domains/book/model"
)

// Client issues exactly one HTTP call per method. It does not retry and sets
// no timeout of its own; deadlines come from the caller's context.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope covers both {data: ...} and {message: ...}. Validation failures
// from the backend come as {errors: [{message}]}.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) ListBooks(ctx context.Context) ([]model.Book, error) {
	books := []model.Book{}
	if _, err := c.do(ctx, "list books", http.MethodGet, "/books", nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *Client) GetBook(ctx context.Context, id int64) (*model.Book, error) {
	var book model.Book
	if _, err := c.do(ctx, "get book", http.MethodGet, bookPath(id), nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *Client) CreateBook(ctx context.Context, payload model.BookPayload) (*model.Book, error) {
	var book model.Book
	if _, err := c.do(ctx, "create book", http.MethodPost, "/books", payload, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *Client) UpdateBook(ctx context.Context, id int64, payload model.BookPayload) (*model.Book, error) {
	var book model.Book
	if _, err := c.do(ctx, "update book", http.MethodPut, bookPath(id), payload, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// DeleteBook returns the backend's confirmation message.
func (c *Client) DeleteBook(ctx context.Context, id int64) (string, error) {
	return c.do(ctx, "delete book", http.MethodDelete, bookPath(id), nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) (string, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("upstream %s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return "", fmt.Errorf("upstream %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	var env envelope
	var decodeErr error
	if len(bytes.TrimSpace(raw)) > 0 {
		decodeErr = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// An undecodable error body still carries the status.
		msg := env.Message
		if msg == "" && len(env.Errors) > 0 {
			msg = env.Errors[0].Message
		}
		return "", &UpstreamError{Op: op, Status: resp.StatusCode, Message: msg}
	}

	if decodeErr != nil {
		return "", &NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", decodeErr)}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", &NetworkError{Op: op, Err: fmt.Errorf("decode data: %w", err)}
		}
	}

	return env.Message, nil
}

func bookPath(id int64) string {
	return fmt.Sprintf("/books/%d", id)
}
