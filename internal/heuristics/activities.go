package heuristics

import "strings"

var activityLines = []string{
	"1. Read the summary and discuss key terms.",
	"2. Small-group activity: identify examples from the text.",
	"3. Hands-on/demo (if applicable): follow the experiment steps.",
	"4. Exit ticket: one short question to assess learning.",
}

// Activities is the fixed activity sequence. It is not a template slot; the CLI prints it.
func Activities() string {
	return strings.Join(activityLines, "\n")
}

// Headline returns the short summary shown to the user before the document is produced.
func Headline(s Summarizer, text string) []string {
	if s == nil {
		return nil
	}
	return s.Lines(text, 6)
}
