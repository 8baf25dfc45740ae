package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

type nodeKind int

const (
	rootNode nodeKind = iota
	elemNode
	textNode
	commentNode
	procNode
	directiveNode
)

// node is a minimal XML tree. Names keep their raw prefixes (RawToken), so a parsed part
// serializes back with the same namespace declarations and qualified names.
type node struct {
	kind     nodeKind
	name     xml.Name // Space holds the prefix, not the namespace URI
	attrs    []xml.Attr
	data     []byte
	parent   *node
	children []*node
}

func parseXML(data []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	root := &node{kind: rootNode}
	cur := root
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{kind: elemNode, name: t.Name, attrs: append([]xml.Attr(nil), t.Attr...)}
			cur.append(n)
			cur = n
		case xml.EndElement:
			if cur.kind != elemNode || cur.name != t.Name {
				return nil, fmt.Errorf("unexpected closing tag </%s>", qualified(t.Name))
			}
			cur = cur.parent
		case xml.CharData:
			cur.append(&node{kind: textNode, data: bytes.Clone(t)})
		case xml.Comment:
			cur.append(&node{kind: commentNode, data: bytes.Clone(t)})
		case xml.ProcInst:
			cur.append(&node{kind: procNode, name: xml.Name{Local: t.Target}, data: bytes.Clone(t.Inst)})
		case xml.Directive:
			cur.append(&node{kind: directiveNode, data: bytes.Clone(t)})
		}
	}
	if cur != root {
		return nil, fmt.Errorf("unclosed element <%s>", qualified(cur.name))
	}
	return root, nil
}

func (n *node) append(child *node) {
	child.parent = n
	n.children = append(n.children, child)
}

func (n *node) is(local string) bool { return n.kind == elemNode && n.name.Local == local }

// elements returns the direct element children with the given local name.
func (n *node) elements(local string) []*node {
	var out []*node
	for _, c := range n.children {
		if c.is(local) {
			out = append(out, c)
		}
	}
	return out
}

func (n *node) first(local string) *node {
	for _, c := range n.children {
		if c.is(local) {
			return c
		}
	}
	return nil
}

// newElement creates an element sharing n's prefix.
func (n *node) newElement(local string) *node {
	return &node{kind: elemNode, name: xml.Name{Space: n.name.Space, Local: local}}
}

func (n *node) text() string {
	var sb strings.Builder
	for _, c := range n.children {
		if c.kind == textNode {
			sb.Write(c.data)
		}
	}
	return sb.String()
}

func (n *node) encode(w *bytes.Buffer) {
	switch n.kind {
	case rootNode:
		for _, c := range n.children {
			c.encode(w)
		}
	case textNode:
		escapeText(w, n.data)
	case commentNode:
		w.WriteString("<!--")
		w.Write(n.data)
		w.WriteString("-->")
	case procNode:
		w.WriteString("<?")
		w.WriteString(n.name.Local)
		if len(n.data) > 0 && !isSpace(n.data[0]) {
			w.WriteByte(' ')
		}
		w.Write(n.data)
		w.WriteString("?>")
	case directiveNode:
		w.WriteString("<!")
		w.Write(n.data)
		w.WriteByte('>')
	case elemNode:
		w.WriteByte('<')
		w.WriteString(qualified(n.name))
		for _, a := range n.attrs {
			w.WriteByte(' ')
			w.WriteString(qualified(a.Name))
			w.WriteString(`="`)
			escapeAttr(w, a.Value)
			w.WriteByte('"')
		}
		if len(n.children) == 0 {
			w.WriteString("/>")
			return
		}
		w.WriteByte('>')
		for _, c := range n.children {
			c.encode(w)
		}
		w.WriteString("</")
		w.WriteString(qualified(n.name))
		w.WriteByte('>')
	}
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func escapeText(w *bytes.Buffer, data []byte) {
	for _, b := range data {
		switch b {
		case '&':
			w.WriteString("&amp;")
		case '<':
			w.WriteString("&lt;")
		case '>':
			w.WriteString("&gt;")
		default:
			w.WriteByte(b)
		}
	}
}

func escapeAttr(w *bytes.Buffer, s string) {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '&':
			w.WriteString("&amp;")
		case '<':
			w.WriteString("&lt;")
		case '"':
			w.WriteString("&quot;")
		case '\t':
			w.WriteString("&#x9;")
		case '\n':
			w.WriteString("&#xA;")
		case '\r':
			w.WriteString("&#xD;")
		default:
			w.WriteByte(c)
		}
	}
}
