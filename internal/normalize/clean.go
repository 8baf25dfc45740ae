package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxChars is the hard cap, in runes, on normalized text.
const DefaultMaxChars = 20000

var (
	ligatures = strings.NewReplacer(
		"ﬁ", "fi",
		"ﬂ", "fl",
		"ﬀ", "ff",
		"ﬃ", "ffi",
		"ﬄ", "ffl",
		"ﬆ", "st",
	)
	horizontalSpace = regexp.MustCompile(`[\t\f\v \x{00A0}\x{2007}\x{202F}\x{3000}]+`)
	manyNewlines    = regexp.MustCompile(`\n{3,}`)
)

// Clean applies the common cleanup to any source text: invalid UTF-8 replaced, ligatures
// expanded, NFC, LF line endings, horizontal whitespace collapsed, lines trimmed, runs of
// blank lines limited to one, then a hard cut at maxChars runes.
func Clean(s string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	s = strings.ToValidUTF8(s, "�")
	s = ligatures.Replace(s)
	if out, _, err := transform.String(norm.NFC, s); err == nil {
		s = out
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = horizontalSpace.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = strings.TrimSpace(strings.Join(lines, "\n"))
	s = manyNewlines.ReplaceAllString(s, "\n\n")

	if r := []rune(s); len(r) > maxChars {
		s = string(r[:maxChars])
	}
	return s
}
