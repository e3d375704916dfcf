package render

// Labels are the section headings and info-panel captions.
type Labels struct {
	Introduction   string
	Features       string
	Screenshots    string
	Downloads      string
	Extra          string
	Title          string
	DisplayName    string
	Version        string
	Filename       string
	ExtractionCode string
}

// DefaultLabels returns the English labels.
func DefaultLabels() Labels {
	return Labels{
		Introduction:   "Introduction",
		Features:       "Features",
		Screenshots:    "Screenshots",
		Downloads:      "Downloads",
		Extra:          "Additional Information",
		Title:          "Title",
		DisplayName:    "Name",
		Version:        "Version",
		Filename:       "File",
		ExtractionCode: "Extraction code",
	}
}

// Filenames are the artifact names shown in the preview info panel.
type Filenames struct {
	Fragment  string
	Preview   string
	Shortcode string
}

type options struct {
	labels    Labels
	lang      string
	filenames Filenames
}

// Option customizes Render.
type Option func(*options)

// WithLabels replaces the default labels. Empty fields keep their default.
func WithLabels(labels Labels) Option {
	return func(o *options) {
		merge := func(dst *string, value string) {
			if value != "" {
				*dst = value
			}
		}
		merge(&o.labels.Introduction, labels.Introduction)
		merge(&o.labels.Features, labels.Features)
		merge(&o.labels.Screenshots, labels.Screenshots)
		merge(&o.labels.Downloads, labels.Downloads)
		merge(&o.labels.Extra, labels.Extra)
		merge(&o.labels.Title, labels.Title)
		merge(&o.labels.DisplayName, labels.DisplayName)
		merge(&o.labels.Version, labels.Version)
		merge(&o.labels.Filename, labels.Filename)
		merge(&o.labels.ExtractionCode, labels.ExtractionCode)
	}
}

// WithLanguage sets the preview page's lang attribute.
func WithLanguage(lang string) Option {
	return func(o *options) {
		if lang != "" {
			o.lang = lang
		}
	}
}

// WithFilenames lists the artifact names in the preview info panel.
func WithFilenames(names Filenames) Option {
	return func(o *options) { o.filenames = names }
}

func buildOptions(opts []Option) options {
	o := options{labels: DefaultLabels(), lang: "en"}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
