package utils

import "strings"

const quoteCharacters = "\"'"

// IsBlank reports whether a string is empty or whitespace-only.
func IsBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// TrimSpacesAndQuotes strips surrounding whitespace and one layer of quoting, as left behind by
// .env files and shell exports like SERVICE_SECRET=" value ".
func TrimSpacesAndQuotes(value string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(value), quoteCharacters))
}
