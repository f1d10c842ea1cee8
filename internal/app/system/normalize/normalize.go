// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email lowercases and trims an email for use as an identity key. Every email
// that reaches a store filter must pass through here first.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role string.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
