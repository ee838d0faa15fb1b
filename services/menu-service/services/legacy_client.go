package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/yashrajoria/menu-backend/services/common/errors"
)

// DefaultLegacyMenuURL serves the flat product list of the previous menu backend.
const DefaultLegacyMenuURL = "https://nextback-seven.vercel.app/datamenu"

// LegacySource returns the legacy flat menu as decoded JSON objects.
type LegacySource interface {
	FetchProducts(ctx context.Context) ([]interface{}, error)
}

type LegacyMenuClient struct {
	url        string
	httpClient *http.Client
}

func NewLegacyMenuClient(url string, timeout time.Duration) *LegacyMenuClient {
	if url == "" {
		url = DefaultLegacyMenuURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &LegacyMenuClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *LegacyMenuClient) FetchProducts(ctx context.Context) ([]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch legacy menu: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("legacy menu returned %d", resp.StatusCode)
	}

	var payload interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.Format("Invalid data format")
	}
	products, ok := payload.([]interface{})
	if !ok {
		return nil, apperrors.Format("Invalid data format")
	}
	return products, nil
}
