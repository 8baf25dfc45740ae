package normalize

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/local/lessonplanner/internal/metrics"
	"github.com/local/lessonplanner/internal/outcome"
	"github.com/local/lessonplanner/internal/pdftext"
	"github.com/local/lessonplanner/internal/source"
	"github.com/local/lessonplanner/internal/websearch"
)

// PDFExtractor yields the page text of a PDF.
type PDFExtractor interface {
	Extract(data []byte) (pdftext.Extraction, error)
}

// PageFetcher yields the readable text of a web page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type Options struct {
	MaxChars    int
	MaxSources  int // web hits fetched, in rank order
	Concurrency int
}

// Normalizer converts a source bundle into NormalizedText.
type Normalizer struct {
	pdf     PDFExtractor
	fetcher PageFetcher
	opts    Options
}

func New(pdf PDFExtractor, fetcher PageFetcher, opts Options) *Normalizer {
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultMaxChars
	}
	if opts.MaxSources <= 0 {
		opts.MaxSources = 3
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = opts.MaxSources
	}
	return &Normalizer{pdf: pdf, fetcher: fetcher, opts: opts}
}

// Normalize dispatches on the bundle kind. Only an unreadable PDF is Fatal.
func (n *Normalizer) Normalize(ctx context.Context, b source.Bundle) outcome.Result[string] {
	start := time.Now()
	defer func() { metrics.ObserveStage("normalize", time.Since(start)) }()

	switch b.Kind() {
	case source.KindPDF:
		return n.fromPDF(b.PDF())
	case source.KindText:
		return outcome.Ok(Clean(b.Text(), n.opts.MaxChars))
	case source.KindWeb:
		return n.fromWeb(ctx, b.Web())
	default:
		return outcome.Fail[string](outcome.Ingestion("normalize", errUnknownKind(b.Kind())))
	}
}

func (n *Normalizer) fromPDF(data []byte) outcome.Result[string] {
	if n.pdf == nil {
		return outcome.Fail[string](outcome.Ingestion("pdf", errNoPDFBackend))
	}
	ext, err := n.pdf.Extract(data)
	if err != nil {
		return outcome.Fail[string](outcome.Ingestion("pdf", err))
	}
	metrics.AddPDFPages(ext.Pages-ext.SkippedPages, ext.SkippedPages)
	text := Clean(ext.Text, n.opts.MaxChars)
	if text == "" {
		log.Info().Int("pages", ext.Pages).Msg("pdf has no extractable text")
		return outcome.Degrade("", outcome.NoExtractableText)
	}
	return outcome.Ok(text)
}

func (n *Normalizer) fromWeb(ctx context.Context, sources []source.WebSource) outcome.Result[string] {
	top := sources
	if len(top) > n.opts.MaxSources {
		top = top[:n.opts.MaxSources]
	}

	texts := make([]string, len(top))
	failed := make([]bool, len(top))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.opts.Concurrency)
	for i, src := range top {
		if src.URL == "" || n.fetcher == nil {
			texts[i] = src.Excerpt
			continue
		}
		g.Go(func() error {
			text, err := n.fetcher.Fetch(gctx, src.URL)
			if err != nil {
				class := websearch.Classify(err)
				log.Warn().Err(err).Str("url", src.URL).Str("class", class).Msg("page fetch failed")
				metrics.IncWebFetch(class)
				failed[i] = true
				return nil
			}
			metrics.IncWebFetch("ok")
			texts[i] = text
			return nil
		})
	}
	_ = g.Wait()

	var parts []string
	anyFailed := false
	for i, t := range texts {
		anyFailed = anyFailed || failed[i]
		if strings.TrimSpace(t) != "" {
			parts = append(parts, t)
		}
	}
	combined := strings.Join(parts, "\n\n")
	if combined == "" {
		excerpts := make([]string, 0, len(sources))
		for _, s := range sources {
			excerpts = append(excerpts, s.Excerpt)
		}
		combined = strings.Join(excerpts, " ")
	}

	text := Clean(combined, n.opts.MaxChars)
	switch {
	case text == "":
		return outcome.Degrade("", outcome.NoWebContent)
	case anyFailed:
		return outcome.Degrade(text, outcome.FetchDegradation)
	default:
		return outcome.Ok(text)
	}
}
