package entry

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MaxFilenameRunes bounds the length of names produced by SafeFilename.
const MaxFilenameRunes = 100

const unsafeFilenameChars = `\/:*?"<>|`

// SafeFilename derives a filesystem-safe base name from a title. The title is
// NFC-normalized, reserved and control characters are removed, whitespace
// becomes underscores, and the result is truncated to MaxFilenameRunes runes.
func SafeFilename(title string) string {
	normalized := norm.NFC.String(strings.TrimSpace(title))
	var b strings.Builder
	b.Grow(len(normalized))
	count := 0
	for _, r := range normalized {
		if count == MaxFilenameRunes {
			break
		}
		switch {
		case strings.ContainsRune(unsafeFilenameChars, r):
			continue
		case unicode.IsSpace(r):
			r = '_'
		case unicode.IsControl(r):
			continue
		}
		b.WriteRune(r)
		count++
	}
	return b.String()
}
