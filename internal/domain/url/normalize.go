// Package url normalizes the page addresses gregify opens.
package url

import (
	"net/url"
	"strings"
)

// Normalize adds an https:// prefix to host-like inputs and a trailing slash
// to bare hosts. Inputs with a scheme are returned unchanged.
func Normalize(input string) string {
	input = strings.TrimSpace(input)
	if input == "" || hasScheme(input) {
		return input
	}
	if !LooksLikeURL(input) {
		return input
	}
	if !strings.Contains(input, "/") {
		input += "/"
	}
	return "https://" + input
}

// LooksLikeURL checks if the input appears to be an address rather than
// free text: a known scheme, or a dot and no spaces.
func LooksLikeURL(input string) bool {
	if input == "" {
		return false
	}
	if hasScheme(input) {
		return true
	}
	return strings.Contains(input, ".") && !strings.Contains(input, " ")
}

// ExtractDomain returns the lower-cased host of rawURL without a "www."
// prefix, or "" when rawURL has no host.
func ExtractDomain(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}

func hasScheme(input string) bool {
	for _, p := range []string{"http://", "https://", "file://", "about:"} {
		if strings.HasPrefix(input, p) {
			return true
		}
	}
	return false
}
