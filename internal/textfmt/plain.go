// Package textfmt normalizes the lightly-marked-up text returned by the AI
// agents into plain prose for PDF embedding.
//
// The supported markup set is closed and documented here:
//   - ATX headings: leading #'s removed
//   - bold: **text** and __text__ unwrapped
//   - italic: *text* and _text_ unwrapped
//   - links: [text](url) replaced by text
//   - inline code: `text` unwrapped
//   - bullet list markers (-, *, +) replaced by "• "
//   - numbered list markers kept as-is
//
// Anything outside this set passes through untouched.
package textfmt

import (
	"regexp"
	"strings"
)

var (
	reHeading = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s*`)
	reBullet  = regexp.MustCompile(`(?m)^(\s*)[-*+]\s+`)
	reLink    = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	reBold    = regexp.MustCompile(`\*\*([^*]+)\*\*|__([^_]+)__`)
	reItalic  = regexp.MustCompile(`\*([^*\n]+)\*|_([^_\n]+)_`)
	reCode    = regexp.MustCompile("`([^`]+)`")
	reBlank   = regexp.MustCompile(`\n{3,}`)
)

// PlainText strips the supported markup from s and returns trimmed prose.
func PlainText(s string) string {
	out := strings.ReplaceAll(s, "\r\n", "\n")

	out = reHeading.ReplaceAllString(out, "")
	// Bullets before italic, so "* item" is never mistaken for emphasis.
	out = reBullet.ReplaceAllString(out, "$1• ")
	out = reLink.ReplaceAllString(out, "$1")
	out = reCode.ReplaceAllString(out, "$1")
	out = reBold.ReplaceAllString(out, "$1$2")
	out = reItalic.ReplaceAllString(out, "$1$2")
	out = reBlank.ReplaceAllString(out, "\n\n")

	return strings.TrimSpace(out)
}
