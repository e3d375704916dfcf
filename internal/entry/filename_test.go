package entry_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"pagesmith/internal/entry"
)

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Foo Viewer", "Foo_Viewer"},
		{`a\b/c:d*e?f"g<h>i|j`, "abcdefghij"},
		{"  padded  ", "padded"},
		{"tab\there", "tab_here"},
		{"bell\x07char", "bellchar"},
		{"图片 查看器", "图片_查看器"},
		{"Cafe\u0301", "Caf\u00e9"},
		{"???", ""},
	}
	for _, tc := range tests {
		if got := entry.SafeFilename(tc.title); got != tc.want {
			t.Errorf("SafeFilename(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestSafeFilenameTruncatesRunes(t *testing.T) {
	got := entry.SafeFilename(strings.Repeat("界", 150))
	if n := utf8.RuneCountInString(got); n != entry.MaxFilenameRunes {
		t.Fatalf("expected %d runes, got %d", entry.MaxFilenameRunes, n)
	}
	if !utf8.ValidString(got) {
		t.Fatal("truncation split a rune")
	}
}
