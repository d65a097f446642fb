// Package remote holds clients for sibling services. Lookups here are
// best effort enrichment; callers must tolerate empty answers.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxProductResponseSize caps response bodies read from the product service
const maxProductResponseSize = 1 * 1024 * 1024

// ProductClientConfig configures the product service client
type ProductClientConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// Validate checks the configuration
func (c *ProductClientConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("product client: base url is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("product client: invalid base url: %w", err)
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 5
	}
	return nil
}

// ProductClient resolves product display names from the product service.
// Failures degrade to an empty name so a flaky catalog never blocks
// stock operations.
type ProductClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewProductClient creates a new ProductClient
func NewProductClient(config ProductClientConfig, logger *zap.Logger) (*ProductClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ProductClient{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		logger: logger,
	}, nil
}

type productResponse struct {
	Data struct {
		Name      string `json:"name"`
		ColorName string `json:"color_name"`
	} `json:"data"`
}

// DisplayName returns a human-readable name for a product color id. An
// unreachable product service or unknown id yields an empty name and no
// error.
func (c *ProductClient) DisplayName(ctx context.Context, productColorID string) (string, error) {
	endpoint := fmt.Sprintf("%s/api/v1/product-colors/%s", c.baseURL, url.PathEscape(productColorID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("product lookup failed",
			zap.String("product_color_id", productColorID),
			zap.Error(err))
		return "", nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("product lookup non-200",
			zap.String("product_color_id", productColorID),
			zap.Int("status", resp.StatusCode))
		return "", nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProductResponseSize))
	if err != nil {
		return "", nil
	}

	var parsed productResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Debug("product lookup bad payload",
			zap.String("product_color_id", productColorID),
			zap.Error(err))
		return "", nil
	}

	name := parsed.Data.Name
	if parsed.Data.ColorName != "" {
		name = name + " / " + parsed.Data.ColorName
	}
	return strings.TrimPrefix(name, " / "), nil
}
