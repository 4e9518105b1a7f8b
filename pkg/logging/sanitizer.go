package logging

import (
	"regexp"
)

// RedactedText is the replacement text for sensitive data.
const RedactedText = "[REDACTED]"

var (
	// Matches password=xxx, pwd=xxx, pass=xxx in connection strings.
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// Matches user:pass@host credentials in URL-style connection strings.
	connStringPattern = regexp.MustCompile(`://[^:]+:[^@]+@[^/\s]+`)

	// Matches Shopify Admin API access tokens (shpat_/shpca_/shpss_ prefixes).
	shopifyTokenPattern = regexp.MustCompile(`shp(at|ca|ss)_[A-Za-z0-9]+`)

	// Matches API keys passed as query or form parameters.
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|key)=[A-Za-z0-9-_]{20,}`)
)

// SanitizeConnectionString removes credentials from connection strings
// before they are logged.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(connStr, "${1}="+RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)

	return sanitized
}

// SanitizeToken masks a store access credential for logging. The first four
// characters are kept so operators can still distinguish tokens.
func SanitizeToken(token string) string {
	if len(token) <= 4 {
		return RedactedText
	}
	return token[:4] + "…" + RedactedText
}

// SanitizeError scrubs error messages that might carry credentials
// (database errors echoing DSNs, Shopify client errors echoing tokens).
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(err.Error(), "${1}="+RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)
	sanitized = shopifyTokenPattern.ReplaceAllString(sanitized, RedactedText)
	sanitized = apiKeyPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)

	return sanitized
}
