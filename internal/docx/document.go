package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

const mainPart = "word/document.xml"

var ErrNotDocx = errors.New("not a docx package: word/document.xml missing")

// Document is an opened .docx package. Only the main document, header and footer parts
// are parsed; every other entry is copied through untouched by Bytes.
type Document struct {
	files []*zip.File
	parts map[string]*node
	order []string // parsed header/footer part names, headers first
}

// Open parses a .docx package from memory.
func Open(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	d := &Document{files: zr.File, parts: make(map[string]*node)}
	for _, f := range zr.File {
		if !isBindablePart(f.Name) {
			continue
		}
		raw, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		root, err := parseXML(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.Name, err)
		}
		d.parts[f.Name] = root
		if f.Name != mainPart {
			d.order = append(d.order, f.Name)
		}
	}
	if _, ok := d.parts[mainPart]; !ok {
		return nil, ErrNotDocx
	}
	sort.Slice(d.order, func(i, j int) bool {
		a, b := d.order[i], d.order[j]
		if fa, fb := isFooter(a), isFooter(b); fa != fb {
			return fb
		}
		if len(a) != len(b) {
			return len(a) < len(b) // header2 before header10
		}
		return a < b
	})
	return d, nil
}

func isFooter(name string) bool {
	return strings.HasPrefix(path.Base(name), "footer")
}

func isBindablePart(name string) bool {
	if name == mainPart {
		return true
	}
	dir, file := path.Split(name)
	if dir != "word/" || !strings.HasSuffix(file, ".xml") {
		return false
	}
	return strings.HasPrefix(file, "header") || strings.HasPrefix(file, "footer")
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// body returns the w:body element of the main part.
func (d *Document) body() *node {
	root := d.parts[mainPart]
	for _, c := range root.children {
		if c.is("document") {
			return c.first("body")
		}
	}
	return nil
}

// Paragraphs are the top-level paragraphs of the document body.
func (d *Document) Paragraphs() []*Paragraph {
	return paragraphsOf(d.body())
}

// Tables are the top-level tables of the document body.
func (d *Document) Tables() []*Table {
	return tablesOf(d.body())
}

// HeaderFooters returns every header part, then every footer part, each group in
// numeric part order.
func (d *Document) HeaderFooters() []*Story {
	out := make([]*Story, 0, len(d.order))
	for _, name := range d.order {
		for _, c := range d.parts[name].children {
			if c.is("hdr") || c.is("ftr") {
				out = append(out, &Story{Name: name, n: c})
			}
		}
	}
	return out
}

// Text renders the body paragraphs, one per line. Used for previews and tests.
func (d *Document) Text() string {
	var lines []string
	for _, p := range d.Paragraphs() {
		lines = append(lines, p.Text())
	}
	return strings.Join(lines, "\n")
}

// Bytes re-zips the package. Parsed parts are re-serialized; all other entries are
// copied in their original compressed form.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range d.files {
		if root, ok := d.parts[f.Name]; ok {
			w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate, Modified: f.Modified})
			if err != nil {
				return nil, err
			}
			var part bytes.Buffer
			root.encode(&part)
			if _, err := w.Write(part.Bytes()); err != nil {
				return nil, err
			}
			continue
		}
		if err := copyRaw(zw, f); err != nil {
			return nil, fmt.Errorf("copy %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func copyRaw(zw *zip.Writer, f *zip.File) error {
	hdr := f.FileHeader
	w, err := zw.CreateRaw(&hdr)
	if err != nil {
		return err
	}
	r, err := f.OpenRaw()
	if err != nil {
		return err
	}
	_, err = io.Copy(w, r)
	return err
}
