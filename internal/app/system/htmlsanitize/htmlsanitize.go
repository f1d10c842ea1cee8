// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var (
	// ugc allows basic formatting in free-text fields a client may render as
	// HTML (mission statements, donation descriptions, review comments).
	ugc = bluemonday.UGCPolicy()

	// strict strips all markup; used for single-line fields that must never
	// carry tags (names, taglines, addresses).
	strict = bluemonday.StrictPolicy()
)

// Sanitize cleans rich free-text input, removing scripts, event handlers,
// and javascript: URLs while keeping ordinary formatting.
func Sanitize(s string) string {
	return ugc.Sanitize(s)
}

// Plain strips all HTML, leaving text only.
func Plain(s string) string {
	return strict.Sanitize(s)
}
