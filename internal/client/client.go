// Package client talks to a running board server over HTTP. It implements
// the gateway's Remote so command line sessions push through the same
// endpoints the browser uses.
package client

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
	"github.com/ArturoRiosMock/CRMAIRE/internal/store"
)

const (
	boardPath  = "/api/board"
	importPath = "/api/instagram-import"

	maxErrorBody = 64 << 10
)

// Client is a rate limited HTTP client for one board server.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// New creates a client for the server at baseURL.
// Requests are limited to 5 per second with a burst of 10.
func New(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 10),
		logger:      logger,
	}
}

// BaseURL returns the server address requests go to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResponseError is a non-2xx reply. Message and Code come from the JSON
// error body when the server sent one.
type ResponseError struct {
	Status  int
	Message string
	Code    string
}

func (e *ResponseError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("board server returned %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("board server returned %d: %s", e.Status, e.Message)
}

// Fetch reads the stored board.
func (c *Client) Fetch(ctx context.Context) (*domain.Board, error) {
	resp, err := c.do(ctx, http.MethodGet, boardPath, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, store.ErrUnavailable.WithCause(fmt.Errorf("read board: %w", err))
	}
	return store.DecodeBoard(data)
}

// Push replaces the stored board.
func (c *Client) Push(ctx context.Context, b *domain.Board) error {
	data, err := domain.Encode(b)
	if err != nil {
		return fmt.Errorf("encode board: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPatch, boardPath, data)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.Debug("board pushed", "followers", len(b.Followers), "bytes", len(data))
	return nil
}

// Export downloads the indented board document.
func (c *Client) Export(ctx context.Context) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, boardPath+"/export", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// LookupResult is the server's answer to an import lookup.
type LookupResult struct {
	Count  int           `json:"count"`
	Added  int           `json:"added"`
	Folder string        `json:"folder"`
	Board  *domain.Board `json:"boardState"`
}

// LookupImport asks the server to merge its export folders into the board.
// Nothing is saved on the server; the caller decides whether to adopt the
// returned board.
func (c *Client) LookupImport(ctx context.Context, fresh bool) (*LookupResult, error) {
	path := importPath
	if fresh {
		path += "?" + url.Values{"fresh": {"true"}}.Encode()
	}
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out LookupResult
	if err := json.UnmarshalRead(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("parse lookup response: %w", err)
	}
	if out.Board == nil {
		return nil, fmt.Errorf("lookup response has no board")
	}
	return &out, nil
}

// do sends one request and turns transport failures and non-2xx replies
// into errors. On success the caller owns resp.Body.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, store.ErrUnavailable.WithCause(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, readError(resp)
	}
	return resp, nil
}

func readError(resp *http.Response) error {
	rerr := &ResponseError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return rerr
	}
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		rerr.Message = body.Error
		rerr.Code = body.Code
	}
	return rerr
}
