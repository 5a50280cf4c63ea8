package models

import "time"

// AnalysisRequest is the inbound payload that triggers one analysis run.
type AnalysisRequest struct {
	RequestID string `json:"request_id"`
	Website   string `json:"website"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// Opportunity is a single improvement suggestion from the performance audit.
type Opportunity struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// PerformanceSignals holds the category scores and timing metrics returned by
// the performance-scoring API. The timing metrics are kept verbatim as the
// display strings the upstream API returns.
type PerformanceSignals struct {
	MobileScore            int           `json:"mobile_score"`
	AccessibilityScore     int           `json:"accessibility_score"`
	BestPracticesScore     int           `json:"best_practices_score"`
	SEOScore               int           `json:"seo_score"`
	FirstContentfulPaint   string        `json:"first_contentful_paint"`
	LargestContentfulPaint string        `json:"largest_contentful_paint"`
	CumulativeLayoutShift  string        `json:"cumulative_layout_shift"`
	FirstInputDelay        string        `json:"first_input_delay"`
	Opportunities          []Opportunity `json:"opportunities,omitempty"`
	Error                  string        `json:"error,omitempty"`
}

// SeoSignals holds the on-page SEO signals extracted from the target markup.
type SeoSignals struct {
	Title            string `json:"title"`
	MetaDescription  string `json:"meta_description"`
	MetaKeywords     string `json:"meta_keywords"`
	H1Count          int    `json:"h1_count"`
	H2Count          int    `json:"h2_count"`
	H3Count          int    `json:"h3_count"`
	ImageCount       int    `json:"image_count"`
	ImagesMissingAlt int    `json:"images_missing_alt"`
	SeoScore         int    `json:"seo_score"`
	Error            string `json:"error,omitempty"`
}

// SocialSignals holds the social-metadata signals extracted from the target
// markup. The per-platform link counts are raw substring occurrence counts
// and are informational only.
type SocialSignals struct {
	OGTitle        string `json:"og_title"`
	OGDescription  string `json:"og_description"`
	OGImage        string `json:"og_image"`
	TwitterCard    string `json:"twitter_card"`
	FacebookLinks  int    `json:"facebook_links"`
	TwitterLinks   int    `json:"twitter_links"`
	InstagramLinks int    `json:"instagram_links"`
	LinkedInLinks  int    `json:"linkedin_links"`
	YouTubeLinks   int    `json:"youtube_links"`
	SocialScore    int    `json:"social_score"`
	Error          string `json:"error,omitempty"`
}

// NarrativeSignals holds the human-readable insights produced by the
// generative-text API, or by the deterministic fallback generator when the
// API is unavailable. Insights are always non-empty once a run completes.
type NarrativeSignals struct {
	Insights        string   `json:"insights"`
	Recommendations []string `json:"recommendations"`
	Error           string   `json:"error,omitempty"`
}

// AnalysisData groups the raw output of all collectors for one run. It is
// persisted as-is alongside the request record.
type AnalysisData struct {
	Performance PerformanceSignals `json:"performance"`
	Seo         SeoSignals         `json:"seo"`
	Social      SocialSignals      `json:"social"`
	Narrative   NarrativeSignals   `json:"narrative"`
}

// CompositeReport is the merged result of all collectors for one analysis
// request. A report exclusively owns its signal sets and is only dispatched
// once all four sets are present (degraded sets carry an error marker).
type CompositeReport struct {
	RequestID     string       `json:"request_id"`
	TargetURL     string       `json:"target_url"`
	RequesterName string       `json:"requester_name"`
	GeneratedAt   time.Time    `json:"generated_at"`
	Data          AnalysisData `json:"analysis_data"`
	OverallScore  int          `json:"overall_score"`
	Strengths     []string     `json:"strengths"`
	Improvements  []string     `json:"improvements"`
	Markdown      string       `json:"markdown"`
	ArtifactURL   string       `json:"artifact_url,omitempty"`
}
