package summarize

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"github.com/rs/zerolog/log"
)

var tokenizer = sync.OnceValues(func() (*sentences.DefaultSentenceTokenizer, error) {
	return english.NewSentenceTokenizer(nil)
})

var paragraphBreak = regexp.MustCompile(`\n[ \t\r]*\n`)

// Sentences splits English text into sentences with the Punkt tokenizer, one paragraph
// (blank-line separated block) at a time. Internal whitespace is collapsed and spans
// without any letter or digit are dropped.
func Sentences(text string) []string {
	tok, err := tokenizer()
	if err != nil {
		log.Warn().Err(err).Msg("sentence tokenizer unavailable; splitting on paragraphs only")
	}
	var out []string
	for _, para := range paragraphBreak.Split(text, -1) {
		if tok == nil {
			if s := cleanSentence(para); s != "" {
				out = append(out, s)
			}
			continue
		}
		for _, sent := range tok.Tokenize(para) {
			if s := cleanSentence(sent.Text); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func cleanSentence(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return s
		}
	}
	return ""
}

// Words returns lower-cased content tokens in order: stop words removed, plural endings
// stripped. Repeats are kept; see wordSet.
func Words(sentence string) []string {
	raw := strings.FieldsFunc(strings.ToLower(sentence), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	out := make([]string, 0, len(raw))
	for _, w := range raw {
		w = strings.Trim(w, "'")
		w = strings.TrimSuffix(w, "'s")
		if w == "" {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		out = append(out, stem(w))
	}
	return out
}

func stem(w string) string {
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && !strings.HasSuffix(w, "us"):
		return w[:len(w)-1]
	}
	return w
}

var stopWords = func() map[string]struct{} {
	list := `a about above after again against all am an and any are as at be because been before being
below between both but by can could did do does doing down during each few for from further had has have
having he her here hers herself him himself his how i if in into is it its itself just me more most my
myself no nor not now of off on once only or other our ours ourselves out over own same she should so some
such than that the their theirs them themselves then there these they this those through to too under until
up very was we were what when where which while who whom why will with would you your yours yourself
yourselves also may might must shall`
	m := make(map[string]struct{})
	for _, w := range strings.Fields(list) {
		m[w] = struct{}{}
	}
	return m
}()
