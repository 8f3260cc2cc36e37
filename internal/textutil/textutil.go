// Package textutil cleans user and catalog text before it is stored.
package textutil

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/text/unicode/norm"
)

// SnippetLength is the rune length of comment text copied into notifications.
const SnippetLength = 100

// htmlTagPattern detects the markup catalog descriptions and pasted bios carry.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

// Normalize trims s and puts it in Unicode NFC form.
func Normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Truncate returns at most n runes of s. It never splits a rune.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Snippet normalizes s and cuts it to SnippetLength runes.
func Snippet(s string) string {
	return Truncate(Normalize(s), SnippetLength)
}

// ContainsHTML reports whether s looks like HTML markup.
func ContainsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// Markdown converts HTML in s to Markdown. Plain text, and input the converter
// rejects, comes back normalized but otherwise unchanged.
func Markdown(s string) string {
	s = Normalize(s)
	if s == "" || !ContainsHTML(s) {
		return s
	}

	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(md)
}
