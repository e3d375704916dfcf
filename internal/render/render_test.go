package render_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pagesmith/internal/entry"
	"pagesmith/internal/render"
)

func sampleEntry() entry.Entry {
	return entry.Entry{
		Title:       "Foo",
		DisplayName: "Foo Tool",
		Version:     "1.2",
		Description: []string{"First.", "Second."},
		Features:    []string{"Fast", "Small"},
		Screenshots: []entry.Screenshot{
			{Caption: "Main", Attribution: "Site", URL: "http://x/img.png"},
			{Caption: "Prefs", URL: "http://x/prefs.png"},
		},
		DownloadLinks: []entry.DownloadLink{
			{URL: "http://x/dl", ExtractionCode: "ab12"},
			{URL: "http://y/dl"},
		},
		Extra: []string{"Portable."},
	}
}

func TestRenderEndToEndExample(t *testing.T) {
	parsed, err := entry.Parse(`[Software Info]
title=Foo
[Features]
Fast
[Screenshots]
1 = Main|Site|http://x/img.png
[Download Links]
http://x/dl
`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	out := render.Render(parsed)

	for _, want := range []string{"Foo", "Fast", "http://x/img.png"} {
		if !strings.Contains(out.Fragment, want) {
			t.Fatalf("fragment missing %q:\n%s", want, out.Fragment)
		}
	}
	for _, want := range []string{`[software title="Foo"`, "[feature]Fast[/feature]", `src="http://x/img.png"`, ` [link url="http://x/dl"][/link]`} {
		if !strings.Contains(out.Shortcode, want) {
			t.Fatalf("shortcode missing %q:\n%s", want, out.Shortcode)
		}
	}
	if !strings.Contains(out.Preview, "<title>Foo</title>") {
		t.Fatalf("preview missing title:\n%s", out.Preview)
	}
}

func TestRenderFragmentMarkup(t *testing.T) {
	out := render.Render(sampleEntry())
	want := `<header class="software">
<h2 class="software-title">Foo</h2>
<p class="software-meta"><span class="software-name">Foo Tool</span> <span class="software-version">1.2</span></p>
</header>

<h3>Introduction</h3>
<p>First.</p>
<p>Second.</p>

<h3>Features</h3>
<ol>
  <li>Fast</li>
  <li>Small</li>
</ol>

<h3>Screenshots</h3>
<figure class="screenshot"><img src="http://x/img.png" alt="Main" /><figcaption>Main<span class="attribution">Site</span></figcaption></figure>
<figure class="screenshot"><img src="http://x/prefs.png" alt="Prefs" /><figcaption>Prefs</figcaption></figure>

<h3>Downloads</h3>
<ul class="downloads">
  <li><a href="http://x/dl">http://x/dl</a> <span class="code-label">Extraction code:</span> <code>ab12</code></li>
  <li><a href="http://y/dl">http://y/dl</a></li>
</ul>

<h3>Additional Information</h3>
<p>Portable.</p>
`
	if diff := cmp.Diff(want, out.Fragment); diff != "" {
		t.Fatalf("fragment mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderShortcodeBlock(t *testing.T) {
	out := render.Render(sampleEntry())
	want := `[software title="Foo" name="Foo Tool" version="1.2"]
[section title="Introduction"]
[p]First.[/p]
[p]Second.[/p]
[/section]
[section title="Features"]
[features]
[feature]Fast[/feature]
[feature]Small[/feature]
[/features]
[/section]
[section title="Screenshots"]
[insertimg caption="Main" attribution="Site" src="http://x/img.png"][/insertimg]
[insertimg caption="Prefs" src="http://x/prefs.png"][/insertimg]
[/section]
[section title="Downloads"]
[downloads]
 [link url="http://x/dl" code="ab12"][/link] [link url="http://y/dl"][/link]
[/downloads]
[/section]
[section title="Additional Information"]
[p]Portable.[/p]
[/section]
[/software]
`
	if diff := cmp.Diff(want, out.Shortcode); diff != "" {
		t.Fatalf("shortcode mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderDownloadsFourPerLine(t *testing.T) {
	e := entry.Entry{Title: "T", DisplayName: "T"}
	for i := 0; i < 5; i++ {
		e.DownloadLinks = append(e.DownloadLinks, entry.DownloadLink{URL: "http://x/" + string(rune('a'+i))})
	}
	out := render.Render(e)
	start := strings.Index(out.Shortcode, "[downloads]\n")
	end := strings.Index(out.Shortcode, "[/downloads]")
	lines := strings.Split(strings.TrimSuffix(out.Shortcode[start+len("[downloads]\n"):end], "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two lines of links, got %q", lines)
	}
	if strings.Count(lines[0], "[link ") != 4 || strings.Count(lines[1], "[link ") != 1 {
		t.Fatalf("unexpected link layout %q", lines)
	}
}

func TestRenderEscapesEveryArtifact(t *testing.T) {
	e := sampleEntry()
	e.Title = `A&B "quoted"`
	e.Features = []string{"<script>alert('x')</script>"}
	e.Screenshots[0].Caption = "<b>cap</b>"
	e.DownloadLinks[0].URL = `http://x/?a=1&b="2"`

	out := render.Render(e, render.WithLabels(render.Labels{Features: "<Features>"}))
	for name, artifact := range map[string]string{"fragment": out.Fragment, "preview": out.Preview, "shortcode": out.Shortcode} {
		for _, raw := range []string{"<script>", "<b>cap", "<Features>", `"quoted"`, "a=1&b"} {
			if strings.Contains(artifact, raw) {
				t.Fatalf("%s contains unescaped %q", name, raw)
			}
		}
		if !strings.Contains(artifact, "&lt;script&gt;alert(&#39;x&#39;)&lt;/script&gt;") {
			t.Fatalf("%s missing escaped feature", name)
		}
	}
}

func TestEscapeReservedCharacters(t *testing.T) {
	got := render.Escape(`& < > " ' plain [x]`)
	want := "&amp; &lt; &gt; &#34; &#39; plain [x]"
	if got != want {
		t.Fatalf("Escape = %q, want %q", got, want)
	}
}

var (
	figcaptionPattern = regexp.MustCompile(`<figcaption>([^<]*)`)
	insertimgPattern  = regexp.MustCompile(`\[insertimg caption="([^"]*)"`)
	featureHTML       = regexp.MustCompile(`<li>([^<]*)</li>`)
	featureShortcode  = regexp.MustCompile(`\[feature\]([^\[]*)\[/feature\]`)
	headerHTML        = regexp.MustCompile(`<h2 class="software-title">([^<]*)</h2>\n<p class="software-meta"><span class="software-name">([^<]*)</span>(?: <span class="software-version">([^<]*)</span>)?</p>`)
	headerShortcode   = regexp.MustCompile(`\[software title="([^"]*)" name="([^"]*)"(?: version="([^"]*)")?\]`)
)

func headerFields(t *testing.T, re *regexp.Regexp, artifact, name string) []string {
	t.Helper()
	m := re.FindStringSubmatch(artifact)
	if m == nil {
		t.Fatalf("%s has no software header:\n%s", name, artifact)
	}
	return m[1:]
}

func submatches(re *regexp.Regexp, s string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		out = append(out, m[1])
	}
	return out
}

func TestRenderArtifactsAreConsistent(t *testing.T) {
	e := sampleEntry()
	e.Screenshots = append(e.Screenshots, entry.Screenshot{Caption: "Tom & Jerry", URL: "http://x/3.png"})
	out := render.Render(e)

	fromFragment := submatches(figcaptionPattern, out.Fragment)
	fromPreview := submatches(figcaptionPattern, out.Preview)
	fromShortcode := submatches(insertimgPattern, out.Shortcode)
	want := []string{"Main", "Prefs", "Tom &amp; Jerry"}
	for name, got := range map[string][]string{"fragment": fromFragment, "preview": fromPreview, "shortcode": fromShortcode} {
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s captions mismatch (-want +got):\n%s", name, diff)
		}
	}

	for _, tc := range []struct {
		name  string
		entry entry.Entry
		want  []string
	}{
		{"with version", sampleEntry(), []string{"Foo", "Foo Tool", "1.2"}},
		{"without version", entry.Entry{Title: "Bar & Co", DisplayName: "Bar"}, []string{"Bar &amp; Co", "Bar", ""}},
	} {
		rendered := render.Render(tc.entry)
		for name, got := range map[string][]string{
			"fragment":  headerFields(t, headerHTML, rendered.Fragment, "fragment"),
			"preview":   headerFields(t, headerHTML, rendered.Preview, "preview"),
			"shortcode": headerFields(t, headerShortcode, rendered.Shortcode, "shortcode"),
		} {
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("%s: %s header mismatch (-want +got):\n%s", tc.name, name, diff)
			}
		}
	}

	// Download links render as <li> too, so keep only the feature list.
	ol := out.Fragment[strings.Index(out.Fragment, "<ol>"):strings.Index(out.Fragment, "</ol>")]
	if diff := cmp.Diff(submatches(featureHTML, ol), submatches(featureShortcode, out.Shortcode)); diff != "" {
		t.Fatalf("feature lists differ (-fragment +shortcode):\n%s", diff)
	}
}

func TestRenderOmitsEmptySections(t *testing.T) {
	e := entry.Entry{Title: "Bare", DisplayName: "Bare", Features: []string{"Only"}}
	out := render.Render(e)

	for _, heading := range []string{"Introduction", "Screenshots", "Downloads", "Additional Information"} {
		for name, artifact := range map[string]string{"fragment": out.Fragment, "preview": out.Preview, "shortcode": out.Shortcode} {
			if strings.Contains(artifact, heading) {
				t.Fatalf("%s should omit empty %s section", name, heading)
			}
		}
	}
	if strings.Contains(out.Fragment, "software-version") {
		t.Fatalf("fragment should omit empty version:\n%s", out.Fragment)
	}
	if strings.Contains(out.Shortcode, "version=") {
		t.Fatalf("shortcode should omit empty version: %s", out.Shortcode)
	}
}

func TestRenderPreviewShell(t *testing.T) {
	out := render.Render(sampleEntry(),
		render.WithLanguage("zh-CN"),
		render.WithFilenames(render.Filenames{Fragment: "Foo.html"}),
	)
	for _, want := range []string{
		"<!DOCTYPE html>",
		`<html lang="zh-CN">`,
		"<style>",
		"<dt>Version</dt><dd>1.2</dd>",
		"<dt>File</dt><dd>Foo.html</dd>",
		`<article class="content">` + "\n" + out.Fragment + "</article>",
	} {
		if !strings.Contains(out.Preview, want) {
			t.Fatalf("preview missing %q", want)
		}
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	first := render.Render(sampleEntry())
	second := render.Render(sampleEntry())
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("render differs (-first +second):\n%s", diff)
	}
}
