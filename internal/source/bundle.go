package source

import "fmt"

// Kind tags which payload a Bundle carries.
type Kind int

const (
	KindPDF Kind = iota + 1
	KindText
	KindWeb
)

func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindText:
		return "text"
	case KindWeb:
		return "web"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// WebSource is one ranked search hit.
type WebSource struct {
	URL     string
	Title   string
	Excerpt string
}

// Bundle is the raw input of one generation request. Exactly one payload is set,
// matching Kind. Build it with FromPDF, FromText or FromWeb.
type Bundle struct {
	kind Kind
	pdf  []byte
	text string
	web  []WebSource
}

func FromPDF(data []byte) Bundle {
	cp := make([]byte, len(data))
	copy(cp, data)
	return Bundle{kind: KindPDF, pdf: cp}
}

func FromText(text string) Bundle { return Bundle{kind: KindText, text: text} }

func FromWeb(sources []WebSource) Bundle {
	cp := make([]WebSource, len(sources))
	copy(cp, sources)
	return Bundle{kind: KindWeb, web: cp}
}

func (b Bundle) Kind() Kind { return b.kind }

// PDF returns the raw PDF bytes. Callers must not modify the slice.
func (b Bundle) PDF() []byte { return b.pdf }

func (b Bundle) Text() string { return b.text }

// Web returns a copy of the ranked sources.
func (b Bundle) Web() []WebSource {
	out := make([]WebSource, len(b.web))
	copy(out, b.web)
	return out
}
