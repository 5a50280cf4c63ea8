package collectors

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/growthlab/sitescope/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
	<title>Acme Coffee Roasters</title>
	<meta name="description" content="Freshly roasted specialty coffee.">
	<meta name="keywords" content="coffee, roastery">
	<meta property="og:title" content="Acme Coffee">
	<meta property="og:description" content="Small-batch beans.">
	<meta property="og:image" content="https://acme.example/og.png">
	<meta name="twitter:card" content="summary">
</head>
<body>
	<h1>Welcome</h1>
	<h2>Our beans</h2>
	<h2>Our story</h2>
	<h3>Roasting</h3>
	<img src="/a.png" alt="beans">
	<img src="/b.png">
	<a href="https://facebook.com/acme">Facebook</a>
	<a href="https://www.instagram.com/acme">Instagram</a>
	<p>Find us on instagram.com too.</p>
</body>
</html>`

func serveHTML(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
}

func TestMarkupCollector_Collect(t *testing.T) {
	server := serveHTML(t, http.StatusOK, samplePage)
	defer server.Close()

	collector := NewMarkupCollector()
	seo, social := collector.Collect(context.Background(), server.URL)

	require.Empty(t, seo.Error)
	assert.Equal(t, "Acme Coffee Roasters", seo.Title)
	assert.Equal(t, "Freshly roasted specialty coffee.", seo.MetaDescription)
	assert.Equal(t, "coffee, roastery", seo.MetaKeywords)
	assert.Equal(t, 1, seo.H1Count)
	assert.Equal(t, 2, seo.H2Count)
	assert.Equal(t, 1, seo.H3Count)
	assert.Equal(t, 2, seo.ImageCount)
	assert.Equal(t, 1, seo.ImagesMissingAlt)
	// title + description + single h1 + has images; one image misses alt
	assert.Equal(t, 80, seo.SeoScore)

	require.Empty(t, social.Error)
	assert.Equal(t, "Acme Coffee", social.OGTitle)
	assert.Equal(t, "Small-batch beans.", social.OGDescription)
	assert.Equal(t, "https://acme.example/og.png", social.OGImage)
	assert.Equal(t, "summary", social.TwitterCard)
	assert.Equal(t, 100, social.SocialScore)
	assert.Equal(t, 1, social.FacebookLinks)
	// one link href plus one plain-text occurrence
	assert.Equal(t, 2, social.InstagramLinks)
	assert.Equal(t, 0, social.YouTubeLinks)
}

func TestMarkupCollector_MissingDescriptionScores80(t *testing.T) {
	page := `<html><head><title>Example</title></head>
		<body><h1>Hi</h1><img src="/a.png" alt="a"></body></html>`
	server := serveHTML(t, http.StatusOK, page)
	defer server.Close()

	collector := NewMarkupCollector()
	seo, _ := collector.Collect(context.Background(), server.URL)

	require.Empty(t, seo.Error)
	assert.Equal(t, 80, seo.SeoScore)
}

func TestMarkupCollector_FetchErrorDegrades(t *testing.T) {
	server := serveHTML(t, http.StatusServiceUnavailable, "down")
	defer server.Close()

	collector := NewMarkupCollector()
	seo, social := collector.Collect(context.Background(), server.URL)

	assert.Contains(t, seo.Error, "503")
	assert.Contains(t, social.Error, "503")
	assert.Zero(t, seo.SeoScore)
	assert.Zero(t, social.SocialScore)
}

func TestMarkupCollector_UnreachableHostDegrades(t *testing.T) {
	collector := NewMarkupCollector()
	seo, social := collector.Collect(context.Background(), "http://127.0.0.1:1")

	assert.NotEmpty(t, seo.Error)
	assert.NotEmpty(t, social.Error)
}

func TestScoreSeo(t *testing.T) {
	tests := []struct {
		name     string
		signals  models.SeoSignals
		expected int
	}{
		{
			name:     "empty page",
			signals:  models.SeoSignals{},
			expected: 20, // zero images also means zero missing alt
		},
		{
			name: "everything present",
			signals: models.SeoSignals{
				Title:           "t",
				MetaDescription: "d",
				H1Count:         1,
				ImageCount:      3,
			},
			expected: 100,
		},
		{
			name: "multiple h1 tags lose the heading points",
			signals: models.SeoSignals{
				Title:           "t",
				MetaDescription: "d",
				H1Count:         3,
				ImageCount:      1,
			},
			expected: 80,
		},
		{
			name: "missing alt text loses the image-alt points",
			signals: models.SeoSignals{
				Title:            "t",
				MetaDescription:  "d",
				H1Count:          1,
				ImageCount:       4,
				ImagesMissingAlt: 2,
			},
			expected: 80,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoreSeo(tt.signals)
			assert.Equal(t, tt.expected, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
			assert.Zero(t, got%20, "seo score must be a multiple of 20")
		})
	}
}

func TestScoreSocial(t *testing.T) {
	tests := []struct {
		name     string
		signals  models.SocialSignals
		expected int
	}{
		{name: "nothing set", signals: models.SocialSignals{}, expected: 0},
		{
			name:     "og title only",
			signals:  models.SocialSignals{OGTitle: "t"},
			expected: 25,
		},
		{
			name: "all four tags",
			signals: models.SocialSignals{
				OGTitle: "t", OGDescription: "d", OGImage: "i", TwitterCard: "summary",
			},
			expected: 100,
		},
		{
			name: "link counts do not affect the score",
			signals: models.SocialSignals{
				FacebookLinks: 10, TwitterLinks: 10, YouTubeLinks: 10,
			},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoreSocial(tt.signals)
			assert.Equal(t, tt.expected, got)
			assert.Zero(t, got%25, "social score must be a multiple of 25")
		})
	}
}
