// Package usageclient calls the LTI usage report's JSON service.
package usageclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/ltiusage/internal/app/store/queries/usagepages"
	"github.com/dalemusser/ltiusage/internal/app/system/pagelink"
	"go.uber.org/zap"
)

// Names the server reports in X-Service-Method.
const (
	ServiceMethod = "local_ltiusage_get_pagination"
	ListingMethod = "local_ltiusage_get_listing"
)

var (
	// ErrUnauthorized means the server did not accept the bearer token.
	ErrUnauthorized = errors.New("usageclient: unauthorized")
	// ErrForbidden means the caller lacks the view capability.
	ErrForbidden = errors.New("usageclient: access denied")
)

// APIError is a non-2xx answer carrying the server's error body.
type APIError struct {
	Status  int
	Message string
	ErrorID string
}

func (e *APIError) Error() string {
	if e.ErrorID != "" {
		return fmt.Sprintf("usageclient: %d %s (error %s)", e.Status, e.Message, e.ErrorID)
	}
	return fmt.Sprintf("usageclient: %d %s", e.Status, e.Message)
}

// Unwrap maps 401 and 403 onto the sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	}
	return nil
}

// Client talks to one report server with one bearer token.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	Log     *zap.Logger
}

// New returns a Client for baseURL (e.g. https://reports.example.edu).
func New(baseURL, token string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Log:     logger,
	}
}

// FetchPage returns one page of one group. A non-positive perPage leaves
// the size to the server.
func (c *Client) FetchPage(ctx context.Context, groupID int64, page int) (usagepages.PageResult, error) {
	return c.FetchPageSize(ctx, groupID, page, 0)
}

// FetchPageSize is FetchPage with an explicit page size.
func (c *Client) FetchPageSize(ctx context.Context, groupID int64, page, perPage int) (usagepages.PageResult, error) {
	q := url.Values{}
	q.Set("typeid", strconv.FormatInt(groupID, 10))
	q.Set("page", strconv.Itoa(page))
	if perPage > 0 {
		q.Set("perpage", strconv.Itoa(perPage))
	}

	var res usagepages.PageResult
	if err := c.get(ctx, "/ltiusage/api/pagination", ServiceMethod, q, &res); err != nil {
		return usagepages.PageResult{}, err
	}
	return res, nil
}

// Listing returns every group, each on the page given in pages (default 0).
func (c *Client) Listing(ctx context.Context, pages map[int64]int) ([]usagepages.PageResult, error) {
	q := url.Values{}
	for id, p := range pages {
		q.Set(pagelink.Param(id), strconv.Itoa(p))
	}

	var body struct {
		Groups []usagepages.PageResult `json:"groups"`
	}
	if err := c.get(ctx, "/ltiusage/api/listing", ListingMethod, q, &body); err != nil {
		return nil, err
	}
	return body.Groups, nil
}

func (c *Client) get(ctx context.Context, path, method string, q url.Values, out any) error {
	target := c.BaseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("usageclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("usageclient: %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.Log.Debug("usage api call",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if m := resp.Header.Get("X-Service-Method"); m != "" && m != method {
		c.Log.Warn("unexpected service method", zap.String("path", path), zap.String("method", m))
	}
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("usageclient: decode %s: %w", path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: strings.ToLower(http.StatusText(resp.StatusCode))}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Error   string `json:"error"`
		ErrorID string `json:"errorId"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.ErrorID = body.ErrorID
	}
	return apiErr
}
