package render

import "html"

// Escape replaces the five reserved markup characters & < > " ' with entities.
// It is the only escaping routine used by all three artifacts.
func Escape(s string) string {
	return html.EscapeString(s)
}
