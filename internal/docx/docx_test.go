package docx

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/lessonplanner/internal/docx/docxtest"
)

func open(t *testing.T, body string, extra map[string]string) *Document {
	t.Helper()
	d, err := Open(docxtest.Build(body, extra))
	require.NoError(t, err)
	return d
}

func TestOpenReadsStructure(t *testing.T) {
	body := docxtest.Para("Lesson ", "Title: [TBD]") +
		docxtest.Table([]string{docxtest.Para("Grade:"), docxtest.Para("Subject:") + docxtest.Table([]string{docxtest.Para("nested")})}) +
		`<w:p><w:hyperlink r:id="rId1"><w:r><w:t>link</w:t></w:r></w:hyperlink><w:r><w:t>A</w:t><w:tab/><w:t>B</w:t><w:br/><w:t>C</w:t></w:r></w:p>`
	d := open(t, body, map[string]string{
		"word/header1.xml": docxtest.Header(docxtest.Para("Teacher:")),
		"word/footer1.xml": docxtest.Footer(docxtest.Para("Date:")),
	})

	paras := d.Paragraphs()
	require.Len(t, paras, 2)
	assert.Equal(t, "Lesson Title: [TBD]", paras[0].Text())
	assert.Equal(t, "linkA\tB\nC", paras[1].Text())

	tables := d.Tables()
	require.Len(t, tables, 1)
	rows := tables[0].Rows()
	require.Len(t, rows, 1)
	require.Len(t, rows[0], 2)
	assert.Equal(t, "Grade:", rows[0][0].Paragraphs()[0].Text())
	assert.Equal(t, "nested", rows[0][1].Tables()[0].Rows()[0][0].Paragraphs()[0].Text())

	stories := d.HeaderFooters()
	require.Len(t, stories, 2)
	assert.Equal(t, "word/header1.xml", stories[0].Name)
	assert.Equal(t, "Teacher:", stories[0].Paragraphs()[0].Text())
	assert.Equal(t, "Date:", stories[1].Paragraphs()[0].Text())
}

func TestHeaderFootersListHeadersFirst(t *testing.T) {
	d := open(t, docxtest.Para("body"), map[string]string{
		"word/footer1.xml":  docxtest.Footer(docxtest.Para("f1")),
		"word/header10.xml": docxtest.Header(docxtest.Para("h10")),
		"word/header2.xml":  docxtest.Header(docxtest.Para("h2")),
		"word/footer2.xml":  docxtest.Footer(docxtest.Para("f2")),
	})
	var names []string
	for _, s := range d.HeaderFooters() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"word/header2.xml", "word/header10.xml", "word/footer1.xml", "word/footer2.xml"}, names)
}

func TestSetTextKeepsFirstRunFormatting(t *testing.T) {
	d := open(t, docxtest.Para("Objectives", ": old"), nil)
	p := d.Paragraphs()[0]
	p.SetText("Objectives: one\ntwo\tthree & <four>")
	assert.Equal(t, "Objectives: one\ntwo\tthree & <four>", p.Text())

	runs := p.Runs()
	require.Len(t, runs, 2)
	assert.Equal(t, "", runs[1].Text())
	assert.NotNil(t, runs[0].n.first("rPr"))
	assert.NotNil(t, runs[1].n.first("rPr"))

	out, err := d.Bytes()
	require.NoError(t, err)
	xmlText := readPart(t, out, "word/document.xml")
	assert.Contains(t, xmlText, `<w:t xml:space="preserve">two</w:t><w:tab/>`)
	assert.Contains(t, xmlText, `three &amp; &lt;four&gt;`)
	assert.Contains(t, xmlText, `<w:br/>`)

	again, err := Open(out)
	require.NoError(t, err)
	assert.Equal(t, "Objectives: one\ntwo\tthree & <four>", again.Paragraphs()[0].Text())
}

func TestSetTextOnEmptyParagraph(t *testing.T) {
	d := open(t, `<w:p><w:pPr><w:jc w:val="center"/></w:pPr></w:p>`, nil)
	p := d.Paragraphs()[0]
	p.SetText("Biology")
	assert.Equal(t, "Biology", p.Text())
	require.Len(t, p.Runs(), 1)
	assert.Equal(t, "w", p.Runs()[0].n.name.Space)
}

func TestBytesPreservesUntouchedParts(t *testing.T) {
	raw := docxtest.Build(docxtest.Para("Hello"), nil)
	d, err := Open(raw)
	require.NoError(t, err)
	out, err := d.Bytes()
	require.NoError(t, err)

	assert.Equal(t, docxtest.Styles, readPart(t, out, "word/styles.xml"))
	doc := readPart(t, out, "word/document.xml")
	assert.True(t, strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`))
	assert.Contains(t, doc, `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`)
	assert.Contains(t, doc, `<w:sectPr/>`)
	assert.Equal(t, readPart(t, raw, "word/document.xml"), doc)
}

func TestOpenRejectsNonDocx(t *testing.T) {
	_, err := Open([]byte("not a zip"))
	assert.Error(t, err)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("hello.txt")
	_, _ = w.Write([]byte("hi"))
	require.NoError(t, zw.Close())
	_, err = Open(buf.Bytes())
	assert.ErrorIs(t, err, ErrNotDocx)
}

func TestOpenRejectsBrokenXML(t *testing.T) {
	_, err := Open(docxtest.Build("<w:p><w:r></w:p>", nil))
	assert.Error(t, err)
}

func readPart(t *testing.T, pkg []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			b, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(b)
		}
	}
	t.Fatalf("part %s not found", name)
	return ""
}
