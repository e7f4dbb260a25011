// Package htmlnorm prepares imported HTML for conversion.
//
// Normalize is a pure text transform: it guarantees a doctype and a charset
// declaration and rewrites well-known merge tags and unsubscribe links into
// the placeholders the platform uses. Running it twice yields the same output
// as running it once.
package htmlnorm

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	doctype            = "<!DOCTYPE html>\n"
	charsetMeta        = "\n    <meta charset=\"UTF-8\">"
	unsubscribeHref    = `href="{{unsubscribe_link}}"`
	DefaultSubjectLine = "Imported Template"
)

var (
	// <head> or <head attrs>, but not <header>.
	headOpenTag = regexp.MustCompile(`(?i)<head(\s[^>]*)?>`)

	unsubscribeLink = regexp.MustCompile(`(?i)href\s*=\s*["']([^"']*unsubscribe[^"']*)["']`)

	mergeTagRewrites = []struct {
		pattern     *regexp.Regexp
		replacement string
	}{
		{regexp.MustCompile(`(?i)\{\{\s*first_?name\s*\}\}`), "{{user.first_name}}"},
		{regexp.MustCompile(`(?i)\{\{\s*last_?name\s*\}\}`), "{{user.last_name}}"},
		{regexp.MustCompile(`(?i)\{\{\s*email\s*\}\}`), "{{user.email}}"},
	}
)

// Normalize returns html with a doctype, a charset declaration and canonical
// merge-tag placeholders.
func Normalize(html string) string {
	out := html
	if !hasDoctype(out) {
		out = doctype + out
	}
	if !strings.Contains(strings.ToLower(out), "charset=") {
		out = insertCharset(out)
	}
	out = RewriteMergeTags(out)
	return out
}

// RewriteMergeTags maps common personalization tags onto the user.* namespace
// and points unsubscribe links at the managed unsubscribe placeholder.
func RewriteMergeTags(html string) string {
	out := html
	for _, r := range mergeTagRewrites {
		out = r.pattern.ReplaceAllString(out, r.replacement)
	}
	return unsubscribeLink.ReplaceAllStringFunc(out, func(m string) string {
		if strings.Contains(m, "{{unsubscribe_link}}") {
			return m
		}
		return unsubscribeHref
	})
}

// hasDoctype matches <!DOCTYPE case-insensitively after any leading
// whitespace or byte-order mark, so editor-saved files are not given a
// second doctype.
func hasDoctype(html string) bool {
	trimmed := strings.TrimLeft(html, " \t\r\n\ufeff")
	return len(trimmed) >= 9 && strings.EqualFold(trimmed[:9], "<!DOCTYPE")
}

func insertCharset(html string) string {
	loc := headOpenTag.FindStringIndex(html)
	if loc == nil {
		return html
	}
	return html[:loc[1]] + charsetMeta + html[loc[1]:]
}

// ExtractSubject returns the document title, or DefaultSubjectLine when the
// document has no usable <title>.
func ExtractSubject(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return DefaultSubjectLine
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return DefaultSubjectLine
	}
	return title
}
