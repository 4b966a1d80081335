package logger

import (
	"net/url"
	"strings"
)

var sensitiveParams = map[string]bool{
	"password":     true,
	"token":        true,
	"refreshtoken": true,
	"accesstoken":  true,
	"secret":       true,
	"api_key":      true,
	"apikey":       true,
	"email":        true,
	"auth":         true,
}

// SanitizedEmail masks an email address for logging (e.g., "u***@e***.com")
func SanitizedEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "[invalid-email]"
	}

	username := parts[0]
	domain := parts[1]

	if len(username) > 1 {
		username = string(username[0]) + strings.Repeat("*", len(username)-1)
	}

	// Keep only the TLD readable
	domainParts := strings.Split(domain, ".")
	if len(domainParts) > 1 {
		for i := 0; i < len(domainParts)-1; i++ {
			domainParts[i] = strings.Repeat("*", len(domainParts[i]))
		}
		domain = strings.Join(domainParts, ".")
	}

	return username + "@" + domain
}

// SanitizeQueryString reports whether a raw query carries a sensitive
// parameter and should be redacted as a whole
func SanitizeQueryString(rawQuery string) bool {
	if rawQuery == "" {
		return false
	}

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		// Unparseable queries are redacted rather than logged
		return true
	}

	for key := range values {
		if sensitiveParams[strings.ToLower(key)] {
			return true
		}
	}
	return false
}
