package logger

import (
	"regexp"
	"strings"
)

var (
	emailRegex  = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	bearerRegex = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/=-]+`)
)

// RedactEmail masks an email address for safe logging.
// "john.doe@example.com" → "jo***@example.com"
// Short local parts (≤2 chars) are fully masked: "ab@example.com" → "***@example.com"
func RedactEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return "***@***"
	}
	if len(local) > 2 {
		return local[:2] + "***@" + domain
	}
	return "***@" + domain
}

// redactPIIValue masks credentials and email addresses. Keys naming a
// secret are blanked entirely.
func redactPIIValue(key, val string) string {
	key = strings.ToLower(key)
	switch {
	case strings.Contains(key, "token"), strings.Contains(key, "authorization"), strings.Contains(key, "password"):
		return "[REDACTED]"
	case strings.Contains(key, "email"), strings.Contains(key, "subscriber"):
		return RedactEmail(val)
	}
	val = bearerRegex.ReplaceAllString(val, "Bearer [REDACTED]")
	return emailRegex.ReplaceAllStringFunc(val, RedactEmail)
}
