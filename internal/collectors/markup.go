package collectors

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/growthlab/sitescope/internal/models"
	"github.com/sirupsen/logrus"
)

// socialPlatforms are the domains counted as outbound social links. The
// counts are raw substring occurrences over the whole document, a heuristic
// that will overcount when a domain appears in non-link text.
var socialPlatforms = []string{
	"facebook.com",
	"twitter.com",
	"instagram.com",
	"linkedin.com",
	"youtube.com",
}

// MarkupCollector fetches the target site's static HTML and extracts the
// SEO and social-metadata signals. No JavaScript is executed.
type MarkupCollector struct {
	client *resty.Client
}

// Ensure MarkupCollector implements Collector
var _ Collector = (*MarkupCollector)(nil)

// NewMarkupCollector creates a new markup collector
func NewMarkupCollector() *MarkupCollector {
	return &MarkupCollector{
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "SiteScope-Analyzer/1.0"),
	}
}

func (c *MarkupCollector) Name() string {
	return "markup"
}

func (c *MarkupCollector) IsConfigured() bool {
	return true // plain HTTP fetch, no credential required
}

// Collect fetches the URL and extracts both signal sets. On any fetch or
// parse failure it returns degraded sets carrying only an error marker; the
// pipeline continues with the remaining collectors.
func (c *MarkupCollector) Collect(ctx context.Context, targetURL string) (models.SeoSignals, models.SocialSignals) {
	resp, err := c.client.R().SetContext(ctx).Get(targetURL)
	if err != nil {
		logrus.Errorf("Markup fetch failed for %s: %v", targetURL, err)
		msg := fmt.Sprintf("failed to fetch website: %v", err)
		return models.SeoSignals{Error: msg}, models.SocialSignals{Error: msg}
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		logrus.Errorf("Markup fetch for %s returned status %d", targetURL, resp.StatusCode())
		msg := fmt.Sprintf("website returned status %d", resp.StatusCode())
		return models.SeoSignals{Error: msg}, models.SocialSignals{Error: msg}
	}

	body := resp.Body()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		logrus.Errorf("Markup parse failed for %s: %v", targetURL, err)
		msg := fmt.Sprintf("failed to parse HTML: %v", err)
		return models.SeoSignals{Error: msg}, models.SocialSignals{Error: msg}
	}

	seo := extractSeoSignals(doc)
	social := extractSocialSignals(doc, string(body))

	logrus.Infof("Markup collector extracted signals for %s (seo=%d, social=%d)",
		targetURL, seo.SeoScore, social.SocialScore)

	return seo, social
}

func extractSeoSignals(doc *goquery.Document) models.SeoSignals {
	signals := models.SeoSignals{
		Title:           strings.TrimSpace(doc.Find("title").First().Text()),
		MetaDescription: metaContent(doc, "name", "description"),
		MetaKeywords:    metaContent(doc, "name", "keywords"),
		H1Count:         doc.Find("h1").Length(),
		H2Count:         doc.Find("h2").Length(),
		H3Count:         doc.Find("h3").Length(),
	}

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		signals.ImageCount++
		if _, ok := img.Attr("alt"); !ok {
			signals.ImagesMissingAlt++
		}
	})

	signals.SeoScore = scoreSeo(signals)
	return signals
}

func extractSocialSignals(doc *goquery.Document, rawHTML string) models.SocialSignals {
	signals := models.SocialSignals{
		OGTitle:       metaContent(doc, "property", "og:title"),
		OGDescription: metaContent(doc, "property", "og:description"),
		OGImage:       metaContent(doc, "property", "og:image"),
		TwitterCard:   metaContent(doc, "name", "twitter:card"),
	}

	lower := strings.ToLower(rawHTML)
	signals.FacebookLinks = strings.Count(lower, "facebook.com")
	signals.TwitterLinks = strings.Count(lower, "twitter.com")
	signals.InstagramLinks = strings.Count(lower, "instagram.com")
	signals.LinkedInLinks = strings.Count(lower, "linkedin.com")
	signals.YouTubeLinks = strings.Count(lower, "youtube.com")

	signals.SocialScore = scoreSocial(signals)
	return signals
}

// metaContent returns the content attribute of the first meta tag whose key
// attribute (name or property) matches, ignoring case. Some sites declare
// Open Graph tags under name instead of property, so both are checked.
func metaContent(doc *goquery.Document, attr, value string) string {
	var content string
	doc.Find("meta").EachWithBreak(func(_ int, meta *goquery.Selection) bool {
		key, _ := meta.Attr(attr)
		if key == "" && attr == "property" {
			key, _ = meta.Attr("name")
		}
		if strings.EqualFold(strings.TrimSpace(key), value) {
			content, _ = meta.Attr("content")
			content = strings.TrimSpace(content)
			return false
		}
		return true
	})
	return content
}

// scoreSeo applies the additive rubric: 20 points per criterion, capped at
// 100. A heuristic rubric by design, not a standards-derived SEO audit.
func scoreSeo(s models.SeoSignals) int {
	score := 0
	if s.Title != "" {
		score += 20
	}
	if s.MetaDescription != "" {
		score += 20
	}
	if s.H1Count == 1 {
		score += 20
	}
	if s.ImagesMissingAlt == 0 {
		score += 20
	}
	if s.ImageCount > 0 {
		score += 20
	}
	if score > 100 {
		score = 100
	}
	return score
}

// scoreSocial awards 25 points per present social meta tag. Outbound link
// counts are informational and do not affect the score.
func scoreSocial(s models.SocialSignals) int {
	score := 0
	if s.OGTitle != "" {
		score += 25
	}
	if s.OGDescription != "" {
		score += 25
	}
	if s.OGImage != "" {
		score += 25
	}
	if s.TwitterCard != "" {
		score += 25
	}
	return score
}
