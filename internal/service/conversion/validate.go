package conversion

import (
	"fmt"
	"strings"

	"github.com/ignite/bee-importer/internal/beefree"
)

const mib = 1 << 20

func validateInput(html string, maxBytes int, format beefree.MergeTagFormat) error {
	if strings.TrimSpace(html) == "" {
		return &ValidationError{Message: "HTML content cannot be empty"}
	}
	if len(html) > maxBytes {
		return &ValidationError{Message: fmt.Sprintf("HTML content exceeds maximum size of %s", formatSize(maxBytes))}
	}
	lower := strings.ToLower(html)
	if !strings.Contains(lower, "<html") || !strings.Contains(lower, "<body") {
		return &ValidationError{Message: "HTML must contain proper document structure with <html> and <body> tags"}
	}
	if !format.Valid() {
		return &ValidationError{Message: fmt.Sprintf("unsupported merge tag format %q", format)}
	}
	return nil
}

func formatSize(n int) string {
	if n >= mib && n%mib == 0 {
		return fmt.Sprintf("%dMB", n/mib)
	}
	return fmt.Sprintf("%d bytes", n)
}
