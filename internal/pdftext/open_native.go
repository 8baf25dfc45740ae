package pdftext

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// NativeOpener implements Opener with the pure Go github.com/ledongthuc/pdf reader,
// for builds without cgo.
type NativeOpener struct{}

func (NativeOpener) Open(data []byte) (doc Doc, err error) {
	// the reader panics on broken xref tables and page trees
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = nil, fmt.Errorf("malformed PDF: %v", rec)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return nativeDoc{r: r, pages: r.NumPage()}, nil
}

type nativeDoc struct {
	r     *pdf.Reader
	pages int
}

func (d nativeDoc) NumPage() int { return d.pages }

func (d nativeDoc) PageText(i int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("page %d: %v", i+1, rec)
		}
	}()
	p := d.r.Page(i + 1)
	if p.V.IsNull() {
		return "", fmt.Errorf("page %d: missing page object", i+1)
	}
	return p.GetPlainText(nil)
}

func (nativeDoc) Close() error { return nil }
