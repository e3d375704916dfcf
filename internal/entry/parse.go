package entry

import (
	"cmp"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Canonical section names.
const (
	SectionInfo        = "Software Info"
	SectionFeatures    = "Features"
	SectionScreenshots = "Screenshots"
	SectionDownloads   = "Download Links"
	SectionExtra       = "Extra Info"
)

var sectionAliases = map[string]string{
	SectionInfo:        SectionInfo,
	SectionFeatures:    SectionFeatures,
	SectionScreenshots: SectionScreenshots,
	SectionDownloads:   SectionDownloads,
	SectionExtra:       SectionExtra,
	"软件信息":             SectionInfo,
	"功能介绍":             SectionFeatures,
	"软件截图":             SectionScreenshots,
	"下载链接":             SectionDownloads,
	"额外信息":             SectionExtra,
}

var infoKeys = map[string]string{
	"title":       "title",
	"name":        "name",
	"version":     "version",
	"description": "description",
	"标题":          "title",
	"名称":          "name",
	"版本":          "version",
	"描述":          "description",
}

// ParagraphSeparator splits the description value into paragraphs.
const ParagraphSeparator = "||"

// Option customizes Parse.
type Option func(*parser)

// WithSource names the description file in error messages.
func WithSource(name string) Option {
	return func(p *parser) { p.source = name }
}

// WithDefaultTitle supplies the title used when neither title nor name is set.
func WithDefaultTitle(title string) Option {
	return func(p *parser) { p.defaultTitle = strings.TrimSpace(title) }
}

// SkipMalformedLines drops malformed screenshot and download lines instead of
// failing the file. report, when non-nil, receives each dropped line.
func SkipMalformedLines(report func(*LineError)) Option {
	return func(p *parser) {
		p.lenient = true
		p.report = report
	}
}

type keyed[T any] struct {
	key    string
	hasKey bool
	value  T
}

type parser struct {
	source       string
	defaultTitle string
	lenient      bool
	report       func(*LineError)

	info        map[string]string
	features    []keyed[string]
	screenshots []keyed[Screenshot]
	downloads   []DownloadLink
	extra       []string
}

// Parse reads one description and returns its Entry.
func Parse(text string, opts ...Option) (Entry, error) {
	p := &parser{info: make(map[string]string)}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	section := ""
	for idx, raw := range strings.Split(text, "\n") {
		lineNo := idx + 1
		line := strings.TrimSpace(raw)
		if idx == 0 {
			line = strings.TrimSpace(strings.TrimPrefix(line, "\ufeff"))
		}
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			name, ok := sectionName(line)
			if !ok {
				return Entry{}, &SectionError{Source: p.source, Line: lineNo, Text: line}
			}
			section = sectionAliases[name]
			continue
		}
		if err := p.consume(section, lineNo, line); err != nil {
			return Entry{}, err
		}
	}
	return p.build()
}

func sectionName(line string) (string, bool) {
	if !strings.HasSuffix(line, "]") || len(line) < 2 {
		return "", false
	}
	name := strings.TrimSpace(line[1 : len(line)-1])
	if name == "" || strings.ContainsAny(name, "[]") {
		return "", false
	}
	return name, true
}

func (p *parser) consume(section string, lineNo int, line string) error {
	switch section {
	case SectionInfo:
		key, value, ok := splitKeyValue(line)
		if !ok {
			return nil
		}
		if canonical, known := infoKeys[key]; known {
			p.info[canonical] = value
		}
	case SectionFeatures:
		key, value, ok := splitKeyValue(line)
		if !ok {
			p.features = append(p.features, keyed[string]{value: line})
			return nil
		}
		if value != "" {
			p.features = append(p.features, keyed[string]{key: key, hasKey: true, value: value})
		}
	case SectionScreenshots:
		shot, key, lineErr := p.parseScreenshot(lineNo, line)
		if lineErr != nil {
			return p.malformed(lineErr)
		}
		p.screenshots = append(p.screenshots, keyed[Screenshot]{key: key, hasKey: true, value: shot})
	case SectionDownloads:
		link, lineErr := p.parseDownload(lineNo, line)
		if lineErr != nil {
			return p.malformed(lineErr)
		}
		p.downloads = append(p.downloads, link)
	case SectionExtra:
		p.extra = append(p.extra, line)
	}
	return nil
}

func (p *parser) malformed(lineErr *LineError) error {
	if !p.lenient {
		return lineErr
	}
	if p.report != nil {
		p.report(lineErr)
	}
	return nil
}

func (p *parser) lineError(section string, lineNo int, line, reason string) *LineError {
	return &LineError{Source: p.source, Section: section, Line: lineNo, Text: line, Reason: reason}
}

func (p *parser) parseScreenshot(lineNo int, line string) (Screenshot, string, *LineError) {
	key, value, ok := splitKeyValue(line)
	if !ok {
		return Screenshot{}, "", p.lineError(SectionScreenshots, lineNo, line, "expected key = caption|attribution|url")
	}
	fields := strings.SplitN(value, "|", 3)
	if len(fields) < 3 {
		return Screenshot{}, "", p.lineError(SectionScreenshots, lineNo, line, "expected three |-separated fields")
	}
	shot := Screenshot{
		Caption:     strings.TrimSpace(fields[0]),
		Attribution: strings.TrimSpace(fields[1]),
		URL:         strings.TrimSpace(fields[2]),
	}
	if shot.URL == "" {
		return Screenshot{}, "", p.lineError(SectionScreenshots, lineNo, line, "empty url")
	}
	return shot, key, nil
}

func (p *parser) parseDownload(lineNo int, line string) (DownloadLink, *LineError) {
	tokens := strings.Fields(line)
	parsed, err := url.Parse(tokens[0])
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return DownloadLink{}, p.lineError(SectionDownloads, lineNo, line, "expected url [extraction code]")
	}
	link := DownloadLink{URL: tokens[0]}
	if len(tokens) > 1 {
		link.ExtractionCode = tokens[1]
	}
	return link, nil
}

func (p *parser) build() (Entry, error) {
	title := p.info["title"]
	name := p.info["name"]
	if title == "" {
		title = name
	}
	if title == "" {
		title = p.defaultTitle
	}
	if title == "" {
		return Entry{}, p.entryError(ErrMissingTitle)
	}
	if SafeFilename(title) == "" {
		return Entry{}, p.entryError(ErrUnsafeTitle)
	}
	if name == "" {
		name = title
	}

	return Entry{
		Title:         title,
		DisplayName:   name,
		Version:       p.info["version"],
		Description:   SplitParagraphs(p.info["description"]),
		Features:      orderByKey(p.features),
		Screenshots:   orderByKey(p.screenshots),
		DownloadLinks: nonNil(p.downloads),
		Extra:         nonNil(p.extra),
	}, nil
}

func (p *parser) entryError(err error) error {
	if p.source == "" {
		return err
	}
	return fmt.Errorf("%s: %w", p.source, err)
}

// SplitParagraphs splits a description value on ParagraphSeparator, trimming
// each paragraph and dropping empty ones. The result is never nil.
func SplitParagraphs(value string) []string {
	paragraphs := make([]string, 0, strings.Count(value, ParagraphSeparator)+1)
	for _, part := range strings.Split(value, ParagraphSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			paragraphs = append(paragraphs, part)
		}
	}
	return paragraphs
}

func splitKeyValue(line string) (string, string, bool) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(key), strings.TrimSpace(value), true
}

// orderByKey sorts items ascending by key when every key is a base-10
// integer; otherwise file order is kept. The sort is stable so equal keys
// stay in file order.
func orderByKey[T any](items []keyed[T]) []T {
	numbers := make([]int, len(items))
	numeric := true
	for i, item := range items {
		if !item.hasKey {
			numeric = false
			break
		}
		n, err := strconv.Atoi(item.key)
		if err != nil {
			numeric = false
			break
		}
		numbers[i] = n
	}

	type indexed struct {
		n     int
		value T
	}
	ordered := make([]indexed, len(items))
	for i, item := range items {
		ordered[i] = indexed{n: numbers[i], value: item.value}
	}
	if numeric {
		slices.SortStableFunc(ordered, func(a, b indexed) int { return cmp.Compare(a.n, b.n) })
	}

	out := make([]T, len(ordered))
	for i, item := range ordered {
		out[i] = item.value
	}
	return out
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
