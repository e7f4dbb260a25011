package mergetag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCount(t *testing.T) {
	tests := []struct {
		html string
		want int
	}{
		{"", 0},
		{"no tags here", 0},
		{"{{user.first_name}} and {{ company }}", 2},
		{"{{a}}{{a}}{{b}}", 3},
		{"{{}} is not a tag", 0},
		{"{{ unclosed", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Count(tt.html), "Count(%q)", tt.html)
	}
}

func TestTags(t *testing.T) {
	got := Tags("{{a}} {{b}} {{a}}")
	assert.Equal(t, []string{"{{a}}", "{{b}}"}, got)
}

func TestPreview_Liquid(t *testing.T) {
	r := NewRenderer()
	p, err := r.Preview(`<p>Hi {{user.first_name}} {{user.last_name}}</p><a href="{{unsubscribe_link}}">u</a>`,
		"liquid", map[string]any{"user": map[string]any{"first_name": "Ada"}})
	require.NoError(t, err)

	assert.True(t, p.Rendered)
	assert.Equal(t, `<p>Hi Ada Doe</p><a href="#unsubscribe">u</a>`, p.HTML)
	assert.Equal(t, []string{"{{user.first_name}}", "{{user.last_name}}", "{{unsubscribe_link}}"}, p.Tags)
}

func TestPreview_NonLiquidUnrendered(t *testing.T) {
	r := NewRenderer()
	in := `<p>Hi {{user.first_name}}</p>`
	p, err := r.Preview(in, "handlebars", nil)
	require.NoError(t, err)
	assert.False(t, p.Rendered)
	assert.Equal(t, in, p.HTML)
}

func TestPreview_SyntaxError(t *testing.T) {
	r := NewRenderer()
	_, err := r.Preview(`{% nosuchtag %}`, "liquid", nil)
	assert.Error(t, err)
}
