package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mgpai22/subplay/internal/failure"
	"github.com/mgpai22/subplay/internal/player"
)

// Client sends protocol messages to a Server. Delivery failures are
// reported as failure.ErrTransport; protocol failures come back in the
// Response.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient accepts a bare host:port or a full URL. A nil httpClient gets
// a 30s timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) Send(ctx context.Context, req player.Request) (player.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return player.Response{}, fmt.Errorf("failed to encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, MessagePath, body)
}

func (c *Client) Status(ctx context.Context) (player.Response, error) {
	return c.do(ctx, http.MethodGet, StatusPath, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (player.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return player.Response{}, failure.Wrap(failure.ErrTransport, err, "failed to build request")
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return player.Response{}, failure.Wrapf(failure.ErrTransport, err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	var out player.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return player.Response{}, failure.Wrapf(
			failure.ErrTransport, err,
			"unreadable response (status %d)", resp.StatusCode,
		)
	}
	return out, nil
}
