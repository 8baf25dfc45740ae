package binder

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/local/lessonplanner/internal/docx"
	"github.com/local/lessonplanner/internal/lesson"
	"github.com/local/lessonplanner/internal/outcome"
)

var (
	placeholder   = regexp.MustCompile(`\[[^\]]*\]`)
	leftoverToken = regexp.MustCompile(`\[[^\]]+\]`)
)

type Options struct {
	// ReplaceAll fills every paragraph matching the first matching label instead of only
	// the first one.
	ReplaceAll bool
}

// Report describes where each field ended up.
type Report struct {
	Labeled   map[lesson.Field]string // field -> label variant that matched
	Bracketed []lesson.Field          // fields placed by the leftover bracket pass
	Unfilled  []lesson.Field          // non-empty fields that found no place
}

// Binder writes lesson fields into a loosely structured DOCX template.
type Binder struct {
	opts Options
}

func New(opts Options) *Binder { return &Binder{opts: opts} }

// BindBytes opens template, binds fields and returns the new package bytes.
func (b *Binder) BindBytes(template []byte, fields lesson.Fields) ([]byte, Report, error) {
	doc, err := docx.Open(template)
	if err != nil {
		return nil, Report{}, outcome.Ingestion("template", err)
	}
	rep := b.Bind(doc, fields)
	out, err := doc.Bytes()
	if err != nil {
		return nil, rep, outcome.Ingestion("template", err)
	}
	return out, rep, nil
}

// Bind fills doc in place. Each non-empty field is placed next to the first paragraph
// containing one of its label variants (body, then tables, then headers and footers);
// values left over then fill remaining bracket tokens of the body paragraphs in order.
func (b *Binder) Bind(doc *docx.Document, fields lesson.Fields) Report {
	rep := Report{Labeled: make(map[lesson.Field]string)}
	paras := searchOrder(doc)

	for _, v := range fields.Values() {
		if v.Text == "" {
			continue
		}
		for _, label := range lesson.LabelVariants(v.Field) {
			if b.fillLabel(paras, label, v.Text) {
				rep.Labeled[v.Field] = label
				log.Debug().Str("field", string(v.Field)).Str("label", label).Msg("field bound by label")
				break
			}
		}
	}

	var leftovers []lesson.Value
	for _, v := range fields.Values() {
		if _, ok := rep.Labeled[v.Field]; !ok && v.Text != "" {
			leftovers = append(leftovers, v)
		}
	}
	// label-filled paragraphs keep their remaining tokens in play
	for _, p := range doc.Paragraphs() {
		if len(leftovers) == 0 {
			break
		}
		text := p.Text()
		replaced := leftoverToken.ReplaceAllStringFunc(text, func(tok string) string {
			if len(leftovers) == 0 {
				return tok
			}
			v := leftovers[0]
			leftovers = leftovers[1:]
			rep.Bracketed = append(rep.Bracketed, v.Field)
			return v.Text
		})
		if replaced != text {
			p.SetText(replaced)
		}
	}
	for _, v := range leftovers {
		rep.Unfilled = append(rep.Unfilled, v.Field)
	}
	return rep
}

func (b *Binder) fillLabel(paras []*docx.Paragraph, label, value string) bool {
	needle := strings.ToLower(label)
	matched := false
	for _, p := range paras {
		text := p.Text()
		if !strings.Contains(strings.ToLower(text), needle) {
			continue
		}
		p.SetText(fill(text, value))
		matched = true
		if !b.opts.ReplaceAll {
			break
		}
	}
	return matched
}

// fill computes the new paragraph text: the first bracket token becomes the value; else
// the text after the first colon does; else the whole paragraph does.
func fill(text, value string) string {
	if loc := placeholder.FindStringIndex(text); loc != nil {
		return text[:loc[0]] + value + text[loc[1]:]
	}
	if i := strings.IndexByte(text, ':'); i >= 0 {
		return strings.TrimRight(text[:i], " \t\n\r\f\v") + ": " + value
	}
	return value
}

// searchOrder flattens the template: body paragraphs, body tables, then headers and footers.
func searchOrder(doc *docx.Document) []*docx.Paragraph {
	out := doc.Paragraphs()
	for _, t := range doc.Tables() {
		out = appendTable(out, t)
	}
	for _, s := range doc.HeaderFooters() {
		out = append(out, s.Paragraphs()...)
		for _, t := range s.Tables() {
			out = appendTable(out, t)
		}
	}
	return out
}

func appendTable(out []*docx.Paragraph, t *docx.Table) []*docx.Paragraph {
	for _, row := range t.Rows() {
		for _, cell := range row {
			out = append(out, cell.Paragraphs()...)
			for _, nested := range cell.Tables() {
				out = appendTable(out, nested)
			}
		}
	}
	return out
}
