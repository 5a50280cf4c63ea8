package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/growthlab/sitescope/internal/models"
	"github.com/sirupsen/logrus"
)

const maxRecommendations = 5

// ScoreSummary carries the numeric scores already collected by the other
// collectors; the narrative prompt is composed from them.
type ScoreSummary struct {
	Performance int
	Seo         int
	Social      int
}

// NarrativeCollector asks a generative-text completion API for insights and
// recommendations about the site's digital presence. It is a two-branch
// strategy: the primary generator calls the API, and a deterministic
// fallback generator synthesizes a narrative from the numeric scores when the
// API is unconfigured or fails. A NarrativeSignals value is always produced.
type NarrativeCollector struct {
	client  *resty.Client
	apiKey  string
	baseURL string
	model   string
}

// Ensure NarrativeCollector implements Collector
var _ Collector = (*NarrativeCollector)(nil)

type completionRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

// NewNarrativeCollector creates a new narrative collector
func NewNarrativeCollector(apiKey, baseURL, model string) *NarrativeCollector {
	return &NarrativeCollector{
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "SiteScope-Analyzer/1.0"),
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
	}
}

func (c *NarrativeCollector) Name() string {
	return "narrative"
}

func (c *NarrativeCollector) IsConfigured() bool {
	return c.apiKey != ""
}

// Collect produces the narrative signal set for the URL. Failures of the
// primary generator never propagate: the fallback narrative is returned with
// the failure recorded in the error marker.
func (c *NarrativeCollector) Collect(ctx context.Context, targetURL string, scores ScoreSummary) models.NarrativeSignals {
	if !c.IsConfigured() {
		logrus.Warn("Narrative collector using fallback: API key not configured")
		signals := c.fallbackNarrative(scores)
		signals.Error = "API key not configured"
		return signals
	}

	insights, err := c.generate(ctx, targetURL, scores)
	if err != nil {
		logrus.Errorf("Narrative generation failed for %s, using fallback: %v", targetURL, err)
		signals := c.fallbackNarrative(scores)
		signals.Error = err.Error()
		return signals
	}

	recommendations := extractRecommendations(insights)
	if len(recommendations) == 0 {
		recommendations = fallbackRecommendations()
	}

	return models.NarrativeSignals{
		Insights:        insights,
		Recommendations: recommendations,
	}
}

func (c *NarrativeCollector) generate(ctx context.Context, targetURL string, scores ScoreSummary) (string, error) {
	prompt := c.buildPrompt(targetURL, scores)

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetBody(completionRequest{
			Model:       c.model,
			Prompt:      prompt,
			MaxTokens:   600,
			Temperature: 0.7,
		}).
		Post(c.baseURL)

	if err != nil {
		return "", fmt.Errorf("completion API request failed: %w", err)
	}

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("completion API returned status %d", resp.StatusCode())
	}

	var parsed completionResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("failed to parse completion response: %w", err)
	}

	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Text) == "" {
		return "", fmt.Errorf("completion response contained no text")
	}

	return strings.TrimSpace(parsed.Choices[0].Text), nil
}

func (c *NarrativeCollector) buildPrompt(targetURL string, scores ScoreSummary) string {
	return fmt.Sprintf(`You are a digital marketing analyst reviewing the online presence of %s.

Collected scores (0-100):
- Mobile performance: %d
- On-page SEO: %d
- Social media presence: %d

Provide 5 concise insights about this website's digital presence, followed by
5 actionable recommendations for growth. Format the recommendations as a
bulleted list.`, targetURL, scores.Performance, scores.Seo, scores.Social)
}

// listMarker matches bullet and numbered list lines in the model's free text.
var listMarker = regexp.MustCompile(`^\s*(?:•|-|\d+\.)\s*(.+)$`)

// extractRecommendations pulls list items out of the generated text,
// stripped of their leading markers and capped at five entries.
func extractRecommendations(text string) []string {
	var recommendations []string
	for _, line := range strings.Split(text, "\n") {
		match := listMarker.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		item := strings.TrimSpace(match[1])
		if item == "" {
			continue
		}
		recommendations = append(recommendations, item)
		if len(recommendations) == maxRecommendations {
			break
		}
	}
	return recommendations
}

// fallbackNarrative synthesizes a deterministic narrative from the numeric
// scores using threshold-based sentences.
func (c *NarrativeCollector) fallbackNarrative(scores ScoreSummary) models.NarrativeSignals {
	var insights []string

	switch {
	case scores.Performance >= 80:
		insights = append(insights, "The website loads quickly on mobile devices, which keeps visitors engaged and supports search rankings.")
	case scores.Performance >= 50:
		insights = append(insights, "Mobile performance is moderate; visitors on slower connections may experience noticeable load times.")
	default:
		insights = append(insights, "Mobile performance is poor, which drives visitors away before the page finishes loading.")
	}

	switch {
	case scores.Seo >= 80:
		insights = append(insights, "On-page SEO fundamentals are in good shape, giving search engines a clear picture of the site's content.")
	case scores.Seo >= 50:
		insights = append(insights, "On-page SEO covers some of the basics but leaves easy wins on the table, such as meta descriptions and image alt text.")
	default:
		insights = append(insights, "On-page SEO is weak; search engines are likely struggling to understand and rank the site's content.")
	}

	switch {
	case scores.Social >= 80:
		insights = append(insights, "Social sharing metadata is well configured, so links to the site render attractively across social platforms.")
	case scores.Social >= 50:
		insights = append(insights, "Social sharing metadata is partially configured; some platforms will render bare links instead of rich previews.")
	default:
		insights = append(insights, "Social sharing metadata is missing, so shared links appear as plain URLs with no preview.")
	}

	return models.NarrativeSignals{
		Insights:        strings.Join(insights, "\n\n"),
		Recommendations: fallbackRecommendations(),
	}
}

func fallbackRecommendations() []string {
	return []string{
		"Compress and lazy-load images to improve mobile load times.",
		"Write a unique title and meta description for every page.",
		"Add Open Graph and Twitter Card tags so shared links render rich previews.",
		"Publish fresh content regularly to grow organic search traffic.",
		"Link your social media profiles prominently from the site.",
	}
}
