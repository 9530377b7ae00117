package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eventwall/photowall/internal/transport/http/dto"
)

const maxResponseBytes = 2 * 1024 * 1024

// Client reads the public display endpoints of the photo wall API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type RequestError struct {
	Op         string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Err != nil && e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d: %v", e.Op, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d", e.Op, e.StatusCode)
	default:
		return e.Op
	}
}

func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewClient validates baseURL. The token is optional and sent as a bearer
// header when set.
func NewClient(baseURL string, token string, timeout time.Duration) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, &RequestError{Op: "create display client", Err: errors.New("api url is empty")}
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, &RequestError{Op: "parse api url", Err: err}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, &RequestError{Op: "validate api url", Err: fmt.Errorf("invalid api url: %s", trimmed)}
	}

	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		token:      strings.TrimSpace(token),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// IsRetryable reports whether a failed call is worth repeating on the next poll.
func IsRetryable(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Retryable
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func (c *Client) Images(ctx context.Context, eventID string) ([]dto.DisplayImageResponse, error) {
	var images []dto.DisplayImageResponse
	if err := c.getJSON(ctx, "/display/images", eventID, &images); err != nil {
		return nil, err
	}
	if images == nil {
		images = []dto.DisplayImageResponse{}
	}
	return images, nil
}

func (c *Client) Settings(ctx context.Context, eventID string) (dto.DisplaySettingsResponse, error) {
	var settings dto.DisplaySettingsResponse
	if err := c.getJSON(ctx, "/display-settings", eventID, &settings); err != nil {
		return dto.DisplaySettingsResponse{}, err
	}
	return settings, nil
}

// RecordView counts one slide shown on the wall.
func (c *Client) RecordView(ctx context.Context, eventID string) error {
	path := "/events/" + url.PathEscape(strings.TrimSpace(eventID)) + "/views"
	_, _, err := c.do(ctx, http.MethodPost, path)
	return err
}

func (c *Client) getJSON(ctx context.Context, path string, eventID string, target interface{}) error {
	if trimmed := strings.TrimSpace(eventID); trimmed != "" {
		path += "?eventId=" + url.QueryEscape(trimmed)
	}

	status, body, err := c.do(ctx, http.MethodGet, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return &RequestError{Op: "decode http response", StatusCode: status, Err: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method string, path string) (int, []byte, error) {
	if c == nil || c.httpClient == nil {
		return 0, nil, &RequestError{Op: "do request", Err: errors.New("display client is not initialized")}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return 0, nil, &RequestError{Op: "create http request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &RequestError{
			Op:        "execute http request",
			Retryable: isRetryableNetworkError(err),
			Err:       err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, &RequestError{Op: "read http response", StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := strings.TrimSpace(string(body))
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return resp.StatusCode, body, &RequestError{
			Op:         "unexpected http status",
			StatusCode: resp.StatusCode,
			Retryable:  resp.StatusCode >= 500,
			Err:        errors.New(message),
		}
	}

	return resp.StatusCode, body, nil
}

func isRetryableNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
