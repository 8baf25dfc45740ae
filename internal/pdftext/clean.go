package pdftext

import (
	"regexp"
	"strings"
	"unicode"
)

var pageNumberLine = regexp.MustCompile(`(?i)^(page\s+)?[\[\-–(]?\s*\d{1,4}\s*[\]\-–)]?(\s+(of|/)\s+\d{1,4})?\.?$`)

var boilerplate = []string{"CONFIDENTIAL", "COPYRIGHT", "ALL RIGHTS RESERVED", "PROPRIETARY"}

// cleanPage removes page numbers, symbol-only lines and footer boilerplate from one page
// and rejoins lines broken mid-sentence. Blank lines survive as paragraph breaks.
func cleanPage(text string) string {
	var kept []string
	blank := false
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			blank = len(kept) > 0
			continue
		}
		if pageNumberLine.MatchString(trimmed) || isNoise(trimmed) || isBoilerplate(trimmed) {
			continue
		}
		if blank {
			kept = append(kept, "")
			blank = false
		}
		kept = append(kept, trimmed)
	}
	return strings.Join(fixBrokenLines(kept), "\n")
}

// isNoise reports lines with no letters or digits at all.
func isNoise(line string) bool {
	for _, r := range line {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isBoilerplate(line string) bool {
	if len(line) >= 100 {
		return false
	}
	upper := strings.ToUpper(line)
	for _, p := range boilerplate {
		if strings.Contains(upper, p) {
			return true
		}
	}
	return false
}

// fixBrokenLines merges a line into its predecessor when the predecessor does not end a
// sentence and the line starts lower-case. A trailing hyphen after a letter is treated as
// a word split and dropped.
func fixBrokenLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		if n := len(out); n > 0 && line != "" && out[n-1] != "" && startsLower(line) {
			prev := out[n-1]
			switch {
			case isHyphenated(prev):
				out[n-1] = prev[:len(prev)-1] + line
				continue
			case !endsSentence(prev):
				out[n-1] = prev + " " + line
				continue
			}
		}
		out = append(out, line)
	}
	return out
}

func startsLower(s string) bool {
	for _, r := range s {
		return unicode.IsLower(r)
	}
	return false
}

func endsSentence(s string) bool {
	switch s[len(s)-1] {
	case '.', '!', '?', ':', ';':
		return true
	}
	return false
}

func isHyphenated(s string) bool {
	if len(s) < 2 || s[len(s)-1] != '-' {
		return false
	}
	r := []rune(s[:len(s)-1])
	return unicode.IsLetter(r[len(r)-1])
}
