package report

import (
	"strings"
	"testing"
	"time"

	"github.com/growthlab/sitescope/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureRequest() models.AnalysisRequest {
	return models.AnalysisRequest{
		RequestID: "req-123",
		Website:   "https://example.com",
		Name:      "Jordan Smith",
		Email:     "jordan@example.com",
	}
}

func fixtureData() models.AnalysisData {
	return models.AnalysisData{
		Performance: models.PerformanceSignals{
			MobileScore:            90,
			AccessibilityScore:     88,
			BestPracticesScore:     93,
			SEOScore:               85,
			FirstContentfulPaint:   "1.8 s",
			LargestContentfulPaint: "2.9 s",
			CumulativeLayoutShift:  "0.04",
			FirstInputDelay:        "110 ms",
			Opportunities: []models.Opportunity{
				{ID: "unused-css-rules", Title: "Reduce unused CSS", Score: 0.62},
			},
		},
		Seo: models.SeoSignals{
			Title:           "Example",
			MetaDescription: "An example site.",
			H1Count:         1,
			ImageCount:      2,
			SeoScore:        70,
		},
		Social: models.SocialSignals{
			OGTitle:     "Example",
			SocialScore: 25,
		},
		Narrative: models.NarrativeSignals{
			Insights:        "Overall the site is in reasonable shape.",
			Recommendations: []string{"Add an og:image tag.", "Trim unused CSS."},
		},
	}
}

func TestAssemble_OverallScore(t *testing.T) {
	assembler := NewAssembler("hello@growthlab.agency")
	generatedAt := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

	composite := assembler.Assemble(fixtureRequest(), "https://example.com", fixtureData(), generatedAt)

	// round((90 + 70 + 25) / 3) = round(61.67) = 62
	assert.Equal(t, 62, composite.OverallScore)
	assert.Equal(t, "req-123", composite.RequestID)
	assert.Equal(t, "Jordan Smith", composite.RequesterName)
	assert.Equal(t, generatedAt, composite.GeneratedAt)
}

func TestAssemble_StrengthsAndImprovements(t *testing.T) {
	assembler := NewAssembler("hello@growthlab.agency")

	data := fixtureData()
	composite := assembler.Assemble(fixtureRequest(), "https://example.com", data, time.Now().UTC())

	// 90 is a strength, 25 is an improvement, 70 is neither.
	assert.Equal(t, []string{"Mobile performance"}, composite.Strengths)
	assert.Equal(t, []string{"Social media presence"}, composite.Improvements)
}

func TestAssemble_BoundaryScoresTagNeither(t *testing.T) {
	assembler := NewAssembler("hello@growthlab.agency")

	data := fixtureData()
	data.Performance.MobileScore = 80
	data.Seo.SeoScore = 60
	data.Social.SocialScore = 75

	composite := assembler.Assemble(fixtureRequest(), "https://example.com", data, time.Now().UTC())

	assert.Empty(t, composite.Strengths)
	assert.Empty(t, composite.Improvements)
}

func TestAssemble_MarkdownIsDeterministic(t *testing.T) {
	assembler := NewAssembler("hello@growthlab.agency")
	generatedAt := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

	first := assembler.Assemble(fixtureRequest(), "https://example.com", fixtureData(), generatedAt)
	second := assembler.Assemble(fixtureRequest(), "https://example.com", fixtureData(), generatedAt)

	assert.Equal(t, first.Markdown, second.Markdown)
}

func TestAssemble_MarkdownSectionOrder(t *testing.T) {
	assembler := NewAssembler("hello@growthlab.agency")
	generatedAt := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

	composite := assembler.Assemble(fixtureRequest(), "https://example.com", fixtureData(), generatedAt)
	md := composite.Markdown

	sections := []string{
		"# Digital Footprint Report",
		"## Overall Score",
		"## Performance",
		"## SEO",
		"## Social",
		"## Insights",
		"---",
	}
	last := -1
	for _, section := range sections {
		idx := strings.Index(md, section)
		require.GreaterOrEqual(t, idx, 0, "missing section %q", section)
		assert.Greater(t, idx, last, "section %q out of order", section)
		last = idx
	}

	assert.Contains(t, md, "**Website:** https://example.com")
	assert.Contains(t, md, "**Prepared for:** Jordan Smith")
	assert.Contains(t, md, "**Analyzed:** March 14, 2026 at 09:30 UTC")
	assert.Contains(t, md, "**Key metrics:** FCP 1.8 s, LCP 2.9 s, CLS 0.04, FID 110 ms")
	assert.Contains(t, md, "- Reduce unused CSS")
	assert.Contains(t, md, "1. Add an og:image tag.")
	assert.Contains(t, md, "Reach us at hello@growthlab.agency.")
}

func TestAssemble_DegradedSections(t *testing.T) {
	assembler := NewAssembler("hello@growthlab.agency")

	data := fixtureData()
	data.Performance = models.PerformanceSignals{Error: "API key not configured"}
	data.Seo = models.SeoSignals{Error: "website returned status 503"}
	data.Social = models.SocialSignals{Error: "website returned status 503"}

	composite := assembler.Assemble(fixtureRequest(), "https://example.com", data, time.Now().UTC())
	md := composite.Markdown

	assert.Contains(t, md, "_Performance data unavailable: API key not configured_")
	assert.Contains(t, md, "_SEO data unavailable: website returned status 503_")
	assert.Contains(t, md, "_Social data unavailable: website returned status 503_")

	// Degraded sections still appear in order; the pipeline never drops them.
	assert.Contains(t, md, "## Performance")
	assert.Contains(t, md, "## SEO")
	assert.Contains(t, md, "## Social")

	// All three scores degraded to zero.
	assert.Equal(t, 0, composite.OverallScore)
	assert.ElementsMatch(t, composite.Improvements,
		[]string{"Mobile performance", "On-page SEO", "Social media presence"})
}

func TestAssemble_EmptyTimingsRenderPlaceholder(t *testing.T) {
	assembler := NewAssembler("hello@growthlab.agency")

	data := fixtureData()
	data.Performance.FirstContentfulPaint = ""
	data.Performance.FirstInputDelay = "  "

	composite := assembler.Assemble(fixtureRequest(), "https://example.com", data, time.Now().UTC())

	assert.Contains(t, composite.Markdown, "FCP (not set)")
	assert.Contains(t, composite.Markdown, "FID (not set)")
}
