package pdftext

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrEmptyDocument = errors.New("empty pdf payload")

// Extraction is the text of a PDF together with page statistics.
type Extraction struct {
	Text         string
	Pages        int
	SkippedPages int
	DurationMs   int64
}

// Extractor reads page text in page order through an Opener.
type Extractor struct {
	opener   Opener
	validate bool
}

// NewExtractor returns an Extractor. When validate is set the bytes are first checked with
// pdfcpu; a failed check is logged but does not stop the backend from trying.
func NewExtractor(opener Opener, validate bool) *Extractor {
	if opener == nil {
		opener = FitzOpener{}
	}
	return &Extractor{opener: opener, validate: validate}
}

// Extract returns cleaned page texts joined by "\n". Only a document-level failure is an
// error; pages that fail to extract are skipped and counted.
func (e *Extractor) Extract(data []byte) (Extraction, error) {
	if len(data) == 0 {
		return Extraction{}, ErrEmptyDocument
	}
	start := time.Now()

	declared := -1
	if e.validate {
		n, err := PageCount(data)
		if err != nil {
			log.Warn().Err(err).Msg("pdfcpu validation failed; trying backend anyway")
		} else {
			declared = n
		}
	}

	doc, err := e.opener.Open(data)
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	total := doc.NumPage()
	if declared >= 0 && declared != total {
		log.Debug().Int("pdfcpu_pages", declared).Int("backend_pages", total).Msg("page count mismatch")
	}

	res := Extraction{Pages: total}
	pages := make([]string, 0, total)
	for i := 0; i < total; i++ {
		raw, err := doc.PageText(i)
		if err != nil {
			res.SkippedPages++
			log.Debug().Err(err).Int("page", i+1).Msg("skipping page")
			continue
		}
		if cleaned := cleanPage(raw); cleaned != "" {
			pages = append(pages, cleaned)
		}
	}
	res.Text = strings.Join(pages, "\n")
	res.DurationMs = time.Since(start).Milliseconds()

	log.Debug().
		Int("pages", total).
		Int("skipped", res.SkippedPages).
		Int("chars", len(res.Text)).
		Msg("extracted pdf text")
	return res, nil
}
