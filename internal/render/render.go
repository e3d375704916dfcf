package render

import (
	"strings"

	"pagesmith/internal/entry"
)

// Artifacts are the three rendered outputs of one entry.
type Artifacts struct {
	Fragment  string
	Preview   string
	Shortcode string
}

type sectionKind int

const (
	sectionIntroduction sectionKind = iota
	sectionFeatures
	sectionScreenshots
	sectionDownloads
	sectionExtra
)

type section struct {
	kind  sectionKind
	title string
}

// Render produces all artifacts for e. Output depends only on e and opts.
func Render(e entry.Entry, opts ...Option) Artifacts {
	o := buildOptions(opts)
	plan := sections(e, o.labels)
	fragment := renderFragment(e, plan, o.labels)
	return Artifacts{
		Fragment:  fragment,
		Preview:   renderPreview(e, fragment, o),
		Shortcode: renderShortcode(e, plan),
	}
}

// sections lists the non-empty sections in their fixed order. Every artifact
// walks this list, which keeps them structurally identical.
func sections(e entry.Entry, labels Labels) []section {
	candidates := []struct {
		kind  sectionKind
		title string
		count int
	}{
		{sectionIntroduction, labels.Introduction, len(e.Description)},
		{sectionFeatures, labels.Features, len(e.Features)},
		{sectionScreenshots, labels.Screenshots, len(e.Screenshots)},
		{sectionDownloads, labels.Downloads, len(e.DownloadLinks)},
		{sectionExtra, labels.Extra, len(e.Extra)},
	}
	out := make([]section, 0, len(candidates))
	for _, c := range candidates {
		if c.count > 0 {
			out = append(out, section{kind: c.kind, title: c.title})
		}
	}
	return out
}

func renderFragment(e entry.Entry, plan []section, labels Labels) string {
	var b strings.Builder
	writeHeader(&b, e)
	for _, sec := range plan {
		b.WriteByte('\n')
		b.WriteString("<h3>" + Escape(sec.title) + "</h3>\n")
		switch sec.kind {
		case sectionIntroduction:
			writeParagraphs(&b, e.Description)
		case sectionFeatures:
			b.WriteString("<ol>\n")
			for _, feature := range e.Features {
				b.WriteString("  <li>" + Escape(feature) + "</li>\n")
			}
			b.WriteString("</ol>\n")
		case sectionScreenshots:
			for _, shot := range e.Screenshots {
				b.WriteString(`<figure class="screenshot"><img src="` + Escape(shot.URL) + `" alt="` + Escape(shot.Caption) + `" />`)
				b.WriteString("<figcaption>" + Escape(shot.Caption))
				if shot.Attribution != "" {
					b.WriteString(`<span class="attribution">` + Escape(shot.Attribution) + "</span>")
				}
				b.WriteString("</figcaption></figure>\n")
			}
		case sectionDownloads:
			b.WriteString(`<ul class="downloads">` + "\n")
			for _, link := range e.DownloadLinks {
				href := Escape(link.URL)
				b.WriteString(`  <li><a href="` + href + `">` + href + "</a>")
				if link.ExtractionCode != "" {
					b.WriteString(` <span class="code-label">` + Escape(labels.ExtractionCode) + ":</span> <code>" + Escape(link.ExtractionCode) + "</code>")
				}
				b.WriteString("</li>\n")
			}
			b.WriteString("</ul>\n")
		case sectionExtra:
			writeParagraphs(&b, e.Extra)
		}
	}
	return b.String()
}

// writeHeader carries the same fields as the opening [software] shortcode.
func writeHeader(b *strings.Builder, e entry.Entry) {
	b.WriteString(`<header class="software">` + "\n")
	b.WriteString(`<h2 class="software-title">` + Escape(e.Title) + "</h2>\n")
	b.WriteString(`<p class="software-meta"><span class="software-name">` + Escape(e.DisplayName) + "</span>")
	if e.Version != "" {
		b.WriteString(` <span class="software-version">` + Escape(e.Version) + "</span>")
	}
	b.WriteString("</p>\n</header>\n")
}

func writeParagraphs(b *strings.Builder, paragraphs []string) {
	for _, para := range paragraphs {
		b.WriteString("<p>" + Escape(para) + "</p>\n")
	}
}
