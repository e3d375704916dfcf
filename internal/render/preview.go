package render

import (
	"strings"

	"pagesmith/internal/entry"
)

const previewStyle = `body { margin: 0; background: #f4f5f7; color: #222; font: 16px/1.6 -apple-system, "Segoe UI", "PingFang SC", "Microsoft YaHei", sans-serif; }
main { max-width: 860px; margin: 2rem auto; padding: 0 1rem; }
.info { background: #fff; border-left: 4px solid #2d6cdf; padding: 1rem 1.5rem; margin-bottom: 1.5rem; border-radius: 4px; }
.info h1 { margin: 0 0 .5rem; font-size: 1.6rem; }
.info dl { display: grid; grid-template-columns: max-content 1fr; gap: .25rem 1rem; margin: 0; }
.info dt { font-weight: 600; color: #555; }
.info dd { margin: 0; font-family: ui-monospace, Menlo, Consolas, monospace; word-break: break-all; }
.content { background: #fff; padding: 1.5rem; border-radius: 4px; }
.content .software-title { margin-top: 0; }
.software-meta { color: #555; }
.software-version { font-family: ui-monospace, Menlo, Consolas, monospace; }
.content h3 { border-bottom: 1px solid #e3e5e8; padding-bottom: .3rem; }
.screenshot { margin: 1rem 0; text-align: center; }
.screenshot img { max-width: 100%; border: 1px solid #e3e5e8; }
.screenshot figcaption { color: #555; font-size: .9rem; }
.attribution { display: block; color: #888; font-size: .8rem; }
.downloads { list-style: none; padding: 0; }
.downloads li { padding: .3rem 0; word-break: break-all; }
.downloads code { background: #f0f1f3; padding: 0 .3rem; border-radius: 3px; }
`

func renderPreview(e entry.Entry, fragment string, o options) string {
	var b strings.Builder
	b.Grow(len(fragment) + len(previewStyle) + 1024)

	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString(`<html lang="` + Escape(o.lang) + `">` + "\n")
	b.WriteString("<head>\n")
	b.WriteString(`<meta charset="utf-8">` + "\n")
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	b.WriteString("<title>" + Escape(e.Title) + "</title>\n")
	b.WriteString("<style>\n" + previewStyle + "</style>\n")
	b.WriteString("</head>\n<body>\n<main>\n")

	b.WriteString(`<header class="info">` + "\n")
	b.WriteString("<h1>" + Escape(e.DisplayName) + "</h1>\n<dl>\n")
	writeInfoRow(&b, o.labels.Title, e.Title)
	writeInfoRow(&b, o.labels.DisplayName, e.DisplayName)
	writeInfoRow(&b, o.labels.Version, e.Version)
	writeInfoRow(&b, o.labels.Filename, o.filenames.Fragment)
	b.WriteString("</dl>\n</header>\n")

	b.WriteString(`<article class="content">` + "\n")
	b.WriteString(fragment)
	b.WriteString("</article>\n")
	b.WriteString("</main>\n</body>\n</html>\n")
	return b.String()
}

func writeInfoRow(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	b.WriteString("<dt>" + Escape(label) + "</dt><dd>" + Escape(value) + "</dd>\n")
}
