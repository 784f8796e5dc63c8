package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/aggregator"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/config"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/model"
)

// Client 批次看板 API 客户端
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient 创建批次看板客户端
func NewClient(cfg config.DashboardConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Ensure Client implements aggregator.DashboardSource
var _ aggregator.DashboardSource = (*Client)(nil)

// overviewResponse 看板概览接口响应
type overviewResponse struct {
	Batch           string  `json:"batch"`
	CompanyCount    int     `json:"company_count"`
	AvgSessionCount float64 `json:"avg_session_count"`
	GeneratedAt     string  `json:"generated_at"`
}

// FetchBatchDashboard implements aggregator.DashboardSource
func (c *Client) FetchBatchDashboard(ctx context.Context, batch string) (*model.BatchDashboard, error) {
	endpoint := fmt.Sprintf("%s/api/batches/%s/overview", c.baseURL, url.PathEscape(batch))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Add("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Add("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dashboard api returned %d: %s", resp.StatusCode, string(body))
	}

	var overview overviewResponse
	if err := json.Unmarshal(body, &overview); err != nil {
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}

	return &model.BatchDashboard{
		Batch:           overview.Batch,
		CompanyCount:    overview.CompanyCount,
		AvgSessionCount: overview.AvgSessionCount,
		GeneratedAt:     overview.GeneratedAt,
	}, nil
}
