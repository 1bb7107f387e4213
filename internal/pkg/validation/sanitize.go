package validation

import "strings"

// markupEscaper replaces characters that are unsafe inside HTML markup or attributes
var markupEscaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&#x27;",
	"<", "&lt;",
	">", "&gt;",
	"/", "&#x2F;",
	`\`, "&#x5C;",
	"`", "&#96;",
)

// Escape replaces unsafe markup characters with HTML entities
func Escape(value string) string {
	return markupEscaper.Replace(value)
}

// Sanitize trims surrounding whitespace and escapes the remainder
func Sanitize(value string) string {
	return Escape(strings.TrimSpace(value))
}
