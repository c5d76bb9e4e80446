package validators

import "strings"

// NormalizeEmail is applied before every lookup or insert so that
// addresses differing only in case map to the same account
func NormalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
