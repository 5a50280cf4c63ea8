package intake

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
)

// ValidationError reports a rejected intake field with a user-facing message.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Validate checks the intake fields for one analysis request and returns the
// normalized target URL. No downstream state is created on failure.
func Validate(targetURL, requesterName, requesterEmail string) (string, error) {
	normalized, err := NormalizeURL(targetURL)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(requesterName) == "" {
		return "", &ValidationError{Field: "name", Message: "requester name is required"}
	}

	if !emailPattern.MatchString(strings.TrimSpace(requesterEmail)) {
		return "", &ValidationError{Field: "email", Message: "a valid email address is required"}
	}

	return normalized, nil
}

// NormalizeURL validates the target URL and returns its canonical form. A
// bare host is given an https:// prefix; the host must carry a plausible
// top-level domain and may not be an IPv4 address, since operators are
// expected to supply a domain.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &ValidationError{Field: "website", Message: "website URL is required"}
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", &ValidationError{Field: "website", Message: "website URL is not a valid URL"}
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", &ValidationError{Field: "website", Message: "website URL must use http or https"}
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return "", &ValidationError{Field: "website", Message: "website URL must include a hostname"}
	}

	if ip := net.ParseIP(host); ip != nil && ip.To4() != nil {
		return "", &ValidationError{Field: "website", Message: "website must be a domain name, not an IP address"}
	}

	labels := strings.Split(host, ".")
	if len(labels) < 2 || len(labels[len(labels)-1]) < 2 {
		return "", &ValidationError{Field: "website", Message: "website URL must include a valid domain"}
	}

	parsed.Host = strings.ToLower(parsed.Host)
	return parsed.String(), nil
}
