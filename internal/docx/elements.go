package docx

import (
	"encoding/xml"
	"strings"
)

// Story is a header or footer part.
type Story struct {
	Name string
	n    *node
}

func (s *Story) Paragraphs() []*Paragraph { return paragraphsOf(s.n) }
func (s *Story) Tables() []*Table         { return tablesOf(s.n) }

type Table struct{ n *node }

// Rows returns the table rows, each as a list of cells.
func (t *Table) Rows() [][]*Cell {
	var rows [][]*Cell
	for _, tr := range t.n.elements("tr") {
		var cells []*Cell
		for _, tc := range tr.elements("tc") {
			cells = append(cells, &Cell{n: tc})
		}
		rows = append(rows, cells)
	}
	return rows
}

type Cell struct{ n *node }

func (c *Cell) Paragraphs() []*Paragraph { return paragraphsOf(c.n) }

// Tables are tables nested inside the cell.
func (c *Cell) Tables() []*Table { return tablesOf(c.n) }

type Paragraph struct{ n *node }

// Runs returns the paragraph's runs in order, including runs inside hyperlinks.
func (p *Paragraph) Runs() []*Run {
	var runs []*Run
	for _, c := range p.n.children {
		switch {
		case c.is("r"):
			runs = append(runs, &Run{n: c})
		case c.is("hyperlink"):
			for _, r := range c.elements("r") {
				runs = append(runs, &Run{n: r})
			}
		}
	}
	return runs
}

func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs() {
		sb.WriteString(r.Text())
	}
	return sb.String()
}

// SetText empties every run from the last to the first, keeping run properties, then
// writes text into the first run. A paragraph without runs gets a new one.
func (p *Paragraph) SetText(text string) {
	runs := p.Runs()
	for i := len(runs) - 1; i >= 0; i-- {
		runs[i].Clear()
	}
	if len(runs) > 0 {
		runs[0].SetText(text)
		return
	}
	r := &Run{n: p.n.newElement("r")}
	p.n.append(r.n)
	r.SetText(text)
}

type Run struct{ n *node }

// Text maps w:t to its content, w:tab to "\t" and w:br / w:cr to "\n".
func (r *Run) Text() string {
	var sb strings.Builder
	for _, c := range r.n.children {
		switch {
		case c.is("t"):
			sb.WriteString(c.text())
		case c.is("tab"):
			sb.WriteByte('\t')
		case c.is("br"), c.is("cr"):
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Clear removes the run's content and keeps its w:rPr formatting.
func (r *Run) Clear() {
	kept := r.n.children[:0]
	for _, c := range r.n.children {
		if c.is("rPr") {
			kept = append(kept, c)
		}
	}
	r.n.children = kept
}

// SetText replaces the run content; "\n" becomes w:br and "\t" becomes w:tab.
func (r *Run) SetText(text string) {
	r.Clear()
	var chunk strings.Builder
	flush := func() {
		if chunk.Len() == 0 {
			return
		}
		t := r.n.newElement("t")
		t.attrs = []xml.Attr{{Name: xml.Name{Space: "xml", Local: "space"}, Value: "preserve"}}
		t.append(&node{kind: textNode, data: []byte(chunk.String())})
		r.n.append(t)
		chunk.Reset()
	}
	for _, ch := range text {
		switch ch {
		case '\n':
			flush()
			r.n.append(r.n.newElement("br"))
		case '\t':
			flush()
			r.n.append(r.n.newElement("tab"))
		case '\r':
		default:
			chunk.WriteRune(ch)
		}
	}
	flush()
}

func paragraphsOf(n *node) []*Paragraph {
	if n == nil {
		return nil
	}
	var out []*Paragraph
	for _, p := range n.elements("p") {
		out = append(out, &Paragraph{n: p})
	}
	return out
}

func tablesOf(n *node) []*Table {
	if n == nil {
		return nil
	}
	var out []*Table
	for _, t := range n.elements("tbl") {
		out = append(out, &Table{n: t})
	}
	return out
}
