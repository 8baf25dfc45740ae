package pdftext

import (
	fitz "github.com/gen2brain/go-fitz"
)

// FitzOpener implements Opener using MuPDF through github.com/gen2brain/go-fitz.
type FitzOpener struct{}

func (FitzOpener) Open(data []byte) (Doc, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, err
	}
	return fitzDoc{doc}, nil
}

type fitzDoc struct{ *fitz.Document }

func (d fitzDoc) PageText(i int) (string, error) { return d.Document.Text(i) }
