package collectors

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/growthlab/sitescope/internal/models"
	"github.com/sirupsen/logrus"
)

// opportunityThreshold marks audits worth surfacing as improvement
// opportunities.
const opportunityThreshold = 0.9

// PerformanceCollector calls the external performance-scoring API with the
// mobile strategy across the four audit categories. It never raises to its
// caller: on any failure it returns a zeroed, error-marked signal set.
type PerformanceCollector struct {
	client  *resty.Client
	apiKey  string
	baseURL string
}

// Ensure PerformanceCollector implements Collector
var _ Collector = (*PerformanceCollector)(nil)

type pagespeedResponse struct {
	LighthouseResult struct {
		Categories map[string]struct {
			Score float64 `json:"score"`
		} `json:"categories"`
		Audits map[string]pagespeedAudit `json:"audits"`
	} `json:"lighthouseResult"`
}

type pagespeedAudit struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Score        *float64 `json:"score"`
	DisplayValue string   `json:"displayValue"`
	Details      struct {
		Type string `json:"type"`
	} `json:"details"`
}

// NewPerformanceCollector creates a new performance collector
func NewPerformanceCollector(apiKey, baseURL string) *PerformanceCollector {
	return &PerformanceCollector{
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "SiteScope-Analyzer/1.0"),
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

func (c *PerformanceCollector) Name() string {
	return "performance"
}

func (c *PerformanceCollector) IsConfigured() bool {
	return c.apiKey != ""
}

// Collect runs the performance audit for the URL. The returned signal set is
// always well-formed; degraded runs carry zeroed scores and an error marker.
func (c *PerformanceCollector) Collect(ctx context.Context, targetURL string) models.PerformanceSignals {
	if !c.IsConfigured() {
		logrus.Warn("Performance collector skipped: API key not configured")
		return models.PerformanceSignals{Error: "API key not configured"}
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("url", targetURL).
		SetQueryParam("key", c.apiKey).
		SetQueryParam("strategy", "mobile").
		SetQueryParamsFromValues(map[string][]string{
			"category": {"performance", "accessibility", "best-practices", "seo"},
		}).
		Get(c.baseURL)

	if err != nil {
		logrus.Errorf("Performance API request failed for %s: %v", targetURL, err)
		return models.PerformanceSignals{Error: "performance API request failed"}
	}

	if resp.StatusCode() != 200 {
		logrus.Errorf("Performance API returned status %d for %s", resp.StatusCode(), targetURL)
		return models.PerformanceSignals{Error: "performance API returned an error"}
	}

	var parsed pagespeedResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		logrus.Errorf("Failed to parse performance API response for %s: %v", targetURL, err)
		return models.PerformanceSignals{Error: "failed to parse performance API response"}
	}

	signals := models.PerformanceSignals{
		MobileScore:            categoryScore(parsed, "performance"),
		AccessibilityScore:     categoryScore(parsed, "accessibility"),
		BestPracticesScore:     categoryScore(parsed, "best-practices"),
		SEOScore:               categoryScore(parsed, "seo"),
		FirstContentfulPaint:   auditDisplay(parsed, "first-contentful-paint"),
		LargestContentfulPaint: auditDisplay(parsed, "largest-contentful-paint"),
		CumulativeLayoutShift:  auditDisplay(parsed, "cumulative-layout-shift"),
		FirstInputDelay:        auditDisplay(parsed, "first-input-delay"),
		Opportunities:          extractOpportunities(parsed),
	}

	logrus.Infof("Performance collector scored %s (mobile=%d, a11y=%d, best=%d, seo=%d)",
		targetURL, signals.MobileScore, signals.AccessibilityScore,
		signals.BestPracticesScore, signals.SEOScore)

	return signals
}

// categoryScore rescales the upstream 0.0-1.0 category score to 0-100.
func categoryScore(resp pagespeedResponse, category string) int {
	cat, ok := resp.LighthouseResult.Categories[category]
	if !ok {
		return 0
	}
	return int(math.Round(cat.Score * 100))
}

func auditDisplay(resp pagespeedResponse, id string) string {
	return resp.LighthouseResult.Audits[id].DisplayValue
}

// extractOpportunities filters opportunity audits scoring below the
// threshold, sorted by id so the result is stable across runs.
func extractOpportunities(resp pagespeedResponse) []models.Opportunity {
	var opportunities []models.Opportunity
	for id, audit := range resp.LighthouseResult.Audits {
		if audit.Details.Type != "opportunity" {
			continue
		}
		if audit.Score == nil || *audit.Score >= opportunityThreshold {
			continue
		}
		opportunities = append(opportunities, models.Opportunity{
			ID:          id,
			Title:       audit.Title,
			Description: audit.Description,
			Score:       *audit.Score,
		})
	}

	sort.Slice(opportunities, func(i, j int) bool {
		return opportunities[i].ID < opportunities[j].ID
	})

	return opportunities
}
