package summarize

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/local/lessonplanner/internal/outcome"
)

// fallbackChars bounds the prefix returned when the text has no usable lines.
const fallbackChars = 1000

// Options tune the TextRank walk.
type Options struct {
	Damping       float64
	Epsilon       float64
	MaxIterations int
}

// Summarizer produces extractive summaries.
type Summarizer struct {
	opts Options
}

// New returns a Summarizer; zero option values take the TextRank defaults.
func New(opts Options) *Summarizer {
	if opts.Damping <= 0 || opts.Damping >= 1 {
		opts.Damping = 0.85
	}
	if opts.Epsilon <= 0 {
		opts.Epsilon = 1e-4
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 100
	}
	return &Summarizer{opts: opts}
}

// Summarize returns up to count sentences of text in their original order. Empty input always
// gives an empty Ok result; a degenerate input takes the line-based fallback and is Degraded.
func (s *Summarizer) Summarize(text string, count int) outcome.Result[[]string] {
	if strings.TrimSpace(text) == "" || count <= 0 {
		return outcome.Ok([]string{})
	}
	sentences := Sentences(text)
	words := make([][]string, len(sentences))
	for i, sent := range sentences {
		words[i] = wordSet(Words(sent))
	}
	scores, err := rank(words, s.opts.Damping, s.opts.Epsilon, s.opts.MaxIterations)
	if err != nil {
		log.Debug().Err(err).Int("chars", len(text)).Msg("textrank failed; using line fallback")
		return outcome.Degrade(fallback(text, count), outcome.SummarizationFallback)
	}
	picked := topInDocumentOrder(scores, count)
	out := make([]string, 0, len(picked))
	for _, i := range picked {
		out = append(out, sentences[i])
	}
	return outcome.Ok(out)
}

// Lines is Summarize with the branch dropped, for callers that only need the text.
func (s *Summarizer) Lines(text string, count int) []string {
	return s.Summarize(text, count).Value
}

func fallback(text string, count int) []string {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, ln)
			if len(lines) == count {
				break
			}
		}
	}
	if len(lines) > 0 {
		return lines
	}
	r := []rune(text)
	if len(r) > fallbackChars {
		r = r[:fallbackChars]
	}
	return []string{string(r)}
}
