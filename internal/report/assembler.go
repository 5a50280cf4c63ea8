package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/growthlab/sitescope/internal/models"
)

// Score labels used for the strengths and improvements tags.
const (
	labelPerformance = "Mobile performance"
	labelSeo         = "On-page SEO"
	labelSocial      = "Social media presence"
)

const (
	strengthThreshold    = 80
	improvementThreshold = 60
)

// Assembler merges the collected signal sets into a composite report. The
// contact email appears in the rendered report's footer.
type Assembler struct {
	contactEmail string
}

// NewAssembler creates a new report assembler
func NewAssembler(contactEmail string) *Assembler {
	return &Assembler{contactEmail: contactEmail}
}

// Assemble builds the composite report from the four signal sets. All four
// sets must already be present (possibly degraded); the overall score is the
// rounded mean of the three numeric scores, the narrative being non-numeric.
func (a *Assembler) Assemble(req models.AnalysisRequest, targetURL string, data models.AnalysisData, generatedAt time.Time) *models.CompositeReport {
	report := &models.CompositeReport{
		RequestID:     req.RequestID,
		TargetURL:     targetURL,
		RequesterName: req.Name,
		GeneratedAt:   generatedAt,
		Data:          data,
		OverallScore:  overallScore(data),
	}

	scores := []struct {
		label string
		value int
	}{
		{labelPerformance, data.Performance.MobileScore},
		{labelSeo, data.Seo.SeoScore},
		{labelSocial, data.Social.SocialScore},
	}

	// Independent thresholds, not a partition: a score between the two
	// contributes to neither list.
	for _, s := range scores {
		if s.value > strengthThreshold {
			report.Strengths = append(report.Strengths, s.label)
		}
		if s.value < improvementThreshold {
			report.Improvements = append(report.Improvements, s.label)
		}
	}

	report.Markdown = a.renderMarkdown(report)
	return report
}

func overallScore(data models.AnalysisData) int {
	sum := data.Performance.MobileScore + data.Seo.SeoScore + data.Social.SocialScore
	return int(math.Round(float64(sum) / 3.0))
}

// renderMarkdown produces the report document with a fixed section order.
// It is a direct field-interpolation template: report-derived text is not
// escaped and must be treated as display text, never re-rendered into an
// HTML context without independent sanitization.
func (a *Assembler) renderMarkdown(r *models.CompositeReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Digital Footprint Report\n\n")
	fmt.Fprintf(&b, "**Website:** %s\n\n", r.TargetURL)
	fmt.Fprintf(&b, "**Prepared for:** %s\n\n", r.RequesterName)
	fmt.Fprintf(&b, "**Analyzed:** %s\n\n", r.GeneratedAt.UTC().Format("January 2, 2006 at 15:04 UTC"))

	fmt.Fprintf(&b, "## Overall Score\n\n")
	fmt.Fprintf(&b, "**%d / 100**\n\n", r.OverallScore)
	if len(r.Strengths) > 0 {
		fmt.Fprintf(&b, "**Strengths:**\n\n")
		for _, s := range r.Strengths {
			fmt.Fprintf(&b, "- %s\n", s)
		}
		fmt.Fprintf(&b, "\n")
	}
	if len(r.Improvements) > 0 {
		fmt.Fprintf(&b, "**Areas to improve:**\n\n")
		for _, s := range r.Improvements {
			fmt.Fprintf(&b, "- %s\n", s)
		}
		fmt.Fprintf(&b, "\n")
	}

	a.renderPerformance(&b, r.Data.Performance)
	a.renderSeo(&b, r.Data.Seo)
	a.renderSocial(&b, r.Data.Social)
	a.renderNarrative(&b, r.Data.Narrative)

	fmt.Fprintf(&b, "---\n\n")
	fmt.Fprintf(&b, "Questions about this report? Reach us at %s.\n", a.contactEmail)

	return b.String()
}

func (a *Assembler) renderPerformance(b *strings.Builder, p models.PerformanceSignals) {
	fmt.Fprintf(b, "## Performance\n\n")
	if p.Error != "" {
		fmt.Fprintf(b, "_Performance data unavailable: %s_\n\n", p.Error)
		return
	}
	fmt.Fprintf(b, "| Category | Score |\n|---|---|\n")
	fmt.Fprintf(b, "| Mobile performance | %d |\n", p.MobileScore)
	fmt.Fprintf(b, "| Accessibility | %d |\n", p.AccessibilityScore)
	fmt.Fprintf(b, "| Best practices | %d |\n", p.BestPracticesScore)
	fmt.Fprintf(b, "| SEO | %d |\n\n", p.SEOScore)

	fmt.Fprintf(b, "**Key metrics:** FCP %s, LCP %s, CLS %s, FID %s\n\n",
		orDash(p.FirstContentfulPaint), orDash(p.LargestContentfulPaint),
		orDash(p.CumulativeLayoutShift), orDash(p.FirstInputDelay))

	if len(p.Opportunities) > 0 {
		fmt.Fprintf(b, "**Opportunities:**\n\n")
		for _, o := range p.Opportunities {
			fmt.Fprintf(b, "- %s\n", o.Title)
		}
		fmt.Fprintf(b, "\n")
	}
}

func (a *Assembler) renderSeo(b *strings.Builder, s models.SeoSignals) {
	fmt.Fprintf(b, "## SEO\n\n")
	if s.Error != "" {
		fmt.Fprintf(b, "_SEO data unavailable: %s_\n\n", s.Error)
		return
	}
	fmt.Fprintf(b, "**Score:** %d / 100\n\n", s.SeoScore)
	fmt.Fprintf(b, "- Title: %s\n", orDash(s.Title))
	fmt.Fprintf(b, "- Meta description: %s\n", orDash(s.MetaDescription))
	fmt.Fprintf(b, "- Headings: %d h1, %d h2, %d h3\n", s.H1Count, s.H2Count, s.H3Count)
	fmt.Fprintf(b, "- Images: %d total, %d missing alt text\n\n", s.ImageCount, s.ImagesMissingAlt)
}

func (a *Assembler) renderSocial(b *strings.Builder, s models.SocialSignals) {
	fmt.Fprintf(b, "## Social\n\n")
	if s.Error != "" {
		fmt.Fprintf(b, "_Social data unavailable: %s_\n\n", s.Error)
		return
	}
	fmt.Fprintf(b, "**Score:** %d / 100\n\n", s.SocialScore)
	fmt.Fprintf(b, "- Open Graph title: %s\n", orDash(s.OGTitle))
	fmt.Fprintf(b, "- Open Graph description: %s\n", orDash(s.OGDescription))
	fmt.Fprintf(b, "- Open Graph image: %s\n", orDash(s.OGImage))
	fmt.Fprintf(b, "- Twitter card: %s\n", orDash(s.TwitterCard))
	fmt.Fprintf(b, "- Platform mentions: facebook %d, twitter %d, instagram %d, linkedin %d, youtube %d\n\n",
		s.FacebookLinks, s.TwitterLinks, s.InstagramLinks, s.LinkedInLinks, s.YouTubeLinks)
}

func (a *Assembler) renderNarrative(b *strings.Builder, n models.NarrativeSignals) {
	fmt.Fprintf(b, "## Insights\n\n")
	fmt.Fprintf(b, "%s\n\n", n.Insights)
	if len(n.Recommendations) > 0 {
		fmt.Fprintf(b, "**Recommendations:**\n\n")
		for i, rec := range n.Recommendations {
			fmt.Fprintf(b, "%d. %s\n", i+1, rec)
		}
		fmt.Fprintf(b, "\n")
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(not set)"
	}
	return s
}
