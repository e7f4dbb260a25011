package beefree

// MergeTagFormat is the placeholder syntax the importer should preserve.
type MergeTagFormat string

const (
	MergeTagLiquid     MergeTagFormat = "liquid"
	MergeTagHandlebars MergeTagFormat = "handlebars"
	MergeTagMustache   MergeTagFormat = "mustache"
)

// Valid reports whether f is one of the supported formats.
func (f MergeTagFormat) Valid() bool {
	switch f {
	case MergeTagLiquid, MergeTagHandlebars, MergeTagMustache:
		return true
	}
	return false
}

// Options tune a single conversion. Nil or zero fields take the defaults
// listed in wireDefaults.
type Options struct {
	Minify            *bool          `json:"minify,omitempty"`
	Prettify          *bool          `json:"prettify,omitempty"`
	PreserveComments  *bool          `json:"preserve_comments,omitempty"`
	InlineCSS         *bool          `json:"inline_css,omitempty"`
	PreserveMergeTags *bool          `json:"preserve_merge_tags,omitempty"`
	MergeTagFormat    MergeTagFormat `json:"merge_tag_format,omitempty"`
	TimeoutSeconds    int            `json:"timeout_seconds,omitempty"`
}

// Bool returns a pointer to v, for building Options literals.
func Bool(v bool) *bool { return &v }

// wireOptions is the options object sent to the API. Unset keys are omitted
// rather than sent as null.
type wireOptions struct {
	Minify            *bool  `json:"minify,omitempty"`
	Prettify          *bool  `json:"prettify,omitempty"`
	PreserveComments  *bool  `json:"preserve_comments,omitempty"`
	InlineCSS         *bool  `json:"inline_css,omitempty"`
	PreserveMergeTags *bool  `json:"preserve_merge_tags,omitempty"`
	MergeTagFormat    string `json:"merge_tag_format,omitempty"`
}

type conversionRequest struct {
	HTML    string      `json:"html"`
	Options wireOptions `json:"options"`
}

func normalizeOptions(o Options) wireOptions {
	w := wireOptions{
		Minify:            orDefault(o.Minify, false),
		Prettify:          orDefault(o.Prettify, true),
		PreserveComments:  orDefault(o.PreserveComments, false),
		InlineCSS:         orDefault(o.InlineCSS, true),
		PreserveMergeTags: orDefault(o.PreserveMergeTags, true),
		MergeTagFormat:    string(o.MergeTagFormat),
	}
	if w.MergeTagFormat == "" {
		w.MergeTagFormat = string(MergeTagLiquid)
	}
	return w
}

func orDefault(v *bool, def bool) *bool {
	if v != nil {
		return Bool(*v)
	}
	return Bool(def)
}
