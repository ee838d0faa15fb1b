// Package menuclient is the customer-side view of the menu API: it fetches
// categories, keeps a local copy fresh for a fixed window, and builds the
// checkout hand-off link.
package menuclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/yashrajoria/menu-backend/pkg/menu"
)

var ErrServer = errors.New("menu api error")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchCategories calls GET /categories and normalises the result, so a
// malformed payload yields empty fields rather than an error.
func (c *Client) FetchCategories(ctx context.Context) ([]menu.Category, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/categories", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	defer resp.Body.Close()

	var envelope map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: status %d", ErrServer, resp.StatusCode)
		}
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !cast.ToBool(envelope["ok"]) {
		msg := cast.ToString(envelope["error"])
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s", ErrServer, msg)
	}
	return menu.Normalize(envelope["categories"]), nil
}
