package render

import (
	"strings"

	"pagesmith/internal/entry"
)

// linksPerLine is the number of [link] directives emitted on one line.
const linksPerLine = 4

func renderShortcode(e entry.Entry, plan []section) string {
	var b strings.Builder
	b.WriteString("[software" + attr("title", e.Title) + attr("name", e.DisplayName))
	if e.Version != "" {
		b.WriteString(attr("version", e.Version))
	}
	b.WriteString("]\n")

	for _, sec := range plan {
		b.WriteString("[section" + attr("title", sec.title) + "]\n")
		switch sec.kind {
		case sectionIntroduction:
			writeShortcodeParagraphs(&b, e.Description)
		case sectionFeatures:
			b.WriteString("[features]\n")
			for _, feature := range e.Features {
				b.WriteString("[feature]" + Escape(feature) + "[/feature]\n")
			}
			b.WriteString("[/features]\n")
		case sectionScreenshots:
			for _, shot := range e.Screenshots {
				b.WriteString("[insertimg" + attr("caption", shot.Caption))
				if shot.Attribution != "" {
					b.WriteString(attr("attribution", shot.Attribution))
				}
				b.WriteString(attr("src", shot.URL) + "][/insertimg]\n")
			}
		case sectionDownloads:
			b.WriteString("[downloads]\n")
			for i, link := range e.DownloadLinks {
				b.WriteString(" [link" + attr("url", link.URL))
				if link.ExtractionCode != "" {
					b.WriteString(attr("code", link.ExtractionCode))
				}
				b.WriteString("][/link]")
				if (i+1)%linksPerLine == 0 {
					b.WriteByte('\n')
				}
			}
			if len(e.DownloadLinks)%linksPerLine != 0 {
				b.WriteByte('\n')
			}
			b.WriteString("[/downloads]\n")
		case sectionExtra:
			writeShortcodeParagraphs(&b, e.Extra)
		}
		b.WriteString("[/section]\n")
	}
	b.WriteString("[/software]\n")
	return b.String()
}

func attr(name, value string) string {
	return " " + name + `="` + Escape(value) + `"`
}

func writeShortcodeParagraphs(b *strings.Builder, paragraphs []string) {
	for _, para := range paragraphs {
		b.WriteString("[p]" + Escape(para) + "[/p]\n")
	}
}
