// Package mergetag inspects and previews {{...}} personalization tags.
package mergetag

import (
	"fmt"
	"maps"
	"regexp"

	"github.com/osteele/liquid"
)

// tagPattern matches any {{...}} token. It is deliberately broader than the
// rewrite rules in htmlnorm: every bracketed token counts, recognised or not.
var tagPattern = regexp.MustCompile(`\{\{[^}]+\}\}`)

// Count returns the number of {{...}} tokens in html.
func Count(html string) int {
	return len(tagPattern.FindAllStringIndex(html, -1))
}

// Tags returns the distinct {{...}} tokens in order of first appearance.
func Tags(html string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range tagPattern.FindAllString(html, -1) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// SampleData is the binding set used when a preview supplies no values.
func SampleData() map[string]any {
	return map[string]any{
		"user": map[string]any{
			"first_name": "Jane",
			"last_name":  "Doe",
			"email":      "jane.doe@example.com",
		},
		"unsubscribe_link": "#unsubscribe",
	}
}

// Preview is a rendered merge-tag preview.
type Preview struct {
	HTML     string   `json:"html"`
	Rendered bool     `json:"rendered"`
	Tags     []string `json:"tags"`
}

// Renderer renders Liquid merge tags against sample data.
type Renderer struct {
	engine *liquid.Engine
}

// NewRenderer creates a Liquid-backed preview renderer.
func NewRenderer() *Renderer {
	return &Renderer{engine: liquid.NewEngine()}
}

// Preview renders html with vars layered over SampleData. Only the liquid
// format is rendered; other formats are returned as-is with Rendered=false.
func (r *Renderer) Preview(html, format string, vars map[string]any) (*Preview, error) {
	p := &Preview{HTML: html, Tags: Tags(html)}
	if format != "" && format != "liquid" {
		return p, nil
	}

	bindings := mergeBindings(SampleData(), vars)
	out, err := r.engine.ParseAndRenderString(html, bindings)
	if err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}
	p.HTML = out
	p.Rendered = true
	return p, nil
}

// mergeBindings overlays vars onto base, merging one level into nested maps so
// callers can override user.first_name without restating the whole user.
func mergeBindings(base, vars map[string]any) map[string]any {
	out := maps.Clone(base)
	for k, v := range vars {
		bm, okBase := out[k].(map[string]any)
		vm, okVar := v.(map[string]any)
		if okBase && okVar {
			merged := maps.Clone(bm)
			maps.Copy(merged, vm)
			out[k] = merged
			continue
		}
		out[k] = v
	}
	return out
}
