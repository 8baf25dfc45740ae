// Package docxtest builds small .docx packages for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"sort"
)

const (
	NS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`

	contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

	Styles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles ` + NS + `><w:style w:type="paragraph" w:styleId="Normal"><w:name w:val="Normal"/></w:style></w:styles>`
)

// Para returns a paragraph with one plain run per text.
func Para(texts ...string) string {
	s := "<w:p>"
	for _, t := range texts {
		s += Run(t)
	}
	return s + "</w:p>"
}

// Run returns a bold run holding text.
func Run(text string) string {
	return `<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">` + text + `</w:t></w:r>`
}

// Table returns a table with one row per entry; each row holds the given cell XML.
func Table(rows ...[]string) string {
	s := "<w:tbl>"
	for _, cells := range rows {
		s += "<w:tr>"
		for _, c := range cells {
			s += "<w:tc>" + c + "</w:tc>"
		}
		s += "</w:tr>"
	}
	return s + "</w:tbl>"
}

// Document wraps body XML into word/document.xml content.
func Document(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:document ` + NS + `><w:body>` + body + `<w:sectPr/></w:body></w:document>`
}

// Header wraps paragraph XML into a header part.
func Header(inner string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" + `<w:hdr ` + NS + `>` + inner + `</w:hdr>`
}

// Footer wraps paragraph XML into a footer part.
func Footer(inner string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" + `<w:ftr ` + NS + `>` + inner + `</w:ftr>`
}

// Build zips a package containing the body plus any extra parts (name -> content).
func Build(body string, extra map[string]string) []byte {
	parts := map[string]string{
		"[Content_Types].xml": contentTypes,
		"word/document.xml":   Document(body),
		"word/styles.xml":     Styles,
	}
	for k, v := range extra {
		parts[k] = v
	}
	names := make([]string, 0, len(parts))
	for k := range parts {
		names = append(names, k)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(parts[name])); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
