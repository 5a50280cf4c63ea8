package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/growthlab/sitescope/internal/models"
	"github.com/growthlab/sitescope/internal/report"
)

// Renders a report from fixture signal sets so the markdown layout and email
// content can be reviewed without calling any upstream API.
func main() {
	fmt.Println("SiteScope - Sample Report Renderer")
	fmt.Println("==================================")

	data := models.AnalysisData{
		Performance: models.PerformanceSignals{
			MobileScore:            72,
			AccessibilityScore:     88,
			BestPracticesScore:     93,
			SEOScore:               85,
			FirstContentfulPaint:   "1.8 s",
			LargestContentfulPaint: "2.9 s",
			CumulativeLayoutShift:  "0.04",
			FirstInputDelay:        "110 ms",
			Opportunities: []models.Opportunity{
				{ID: "render-blocking-resources", Title: "Eliminate render-blocking resources", Score: 0.45},
				{ID: "unused-css-rules", Title: "Reduce unused CSS", Score: 0.62},
			},
		},
		Seo: models.SeoSignals{
			Title:           "Acme Coffee Roasters | Small-batch beans, delivered",
			MetaDescription: "Freshly roasted specialty coffee shipped to your door.",
			H1Count:         1,
			H2Count:         4,
			H3Count:         7,
			ImageCount:      12,
			SeoScore:        100,
		},
		Social: models.SocialSignals{
			OGTitle:       "Acme Coffee Roasters",
			OGDescription: "Small-batch beans, delivered.",
			TwitterCard:   "summary_large_image",
			FacebookLinks: 2,
			InstagramLinks: 3,
			SocialScore:   75,
		},
		Narrative: models.NarrativeSignals{
			Insights: "The site loads reasonably fast on mobile and its on-page SEO fundamentals are solid.\n\nSocial previews work on most platforms but the Open Graph image is missing.",
			Recommendations: []string{
				"Add an og:image tag so shared links render a preview image.",
				"Defer render-blocking scripts to improve mobile load time.",
				"Trim unused CSS delivered to mobile clients.",
				"Keep publishing blog content to grow organic traffic.",
				"Cross-link Instagram posts from product pages.",
			},
		},
	}

	req := models.AnalysisRequest{
		RequestID: "sample-request",
		Website:   "https://acmecoffee.example",
		Name:      "Jordan Smith",
		Email:     "jordan@acmecoffee.example",
	}

	assembler := report.NewAssembler("hello@growthlab.agency")
	composite := assembler.Assemble(req, req.Website, data, time.Now().UTC())

	fmt.Println()
	fmt.Println(composite.Markdown)

	dir := "test_output"
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Printf("Could not create output directory: %v\n", err)
		os.Exit(1)
	}

	mdPath := filepath.Join(dir, "sample_report.md")
	if err := os.WriteFile(mdPath, []byte(composite.Markdown), 0644); err != nil {
		fmt.Printf("Could not write markdown: %v\n", err)
		os.Exit(1)
	}

	jsonData, err := json.MarshalIndent(composite, "", "  ")
	if err != nil {
		fmt.Printf("Could not marshal report: %v\n", err)
		os.Exit(1)
	}
	jsonPath := filepath.Join(dir, "sample_report.json")
	if err := os.WriteFile(jsonPath, jsonData, 0644); err != nil {
		fmt.Printf("Could not write JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Report saved to %s and %s\n", mdPath, jsonPath)
}
