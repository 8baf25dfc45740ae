package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/local/lessonplanner/internal/binder"
	"github.com/local/lessonplanner/internal/heuristics"
	"github.com/local/lessonplanner/internal/lesson"
	"github.com/local/lessonplanner/internal/metrics"
	"github.com/local/lessonplanner/internal/normalize"
	"github.com/local/lessonplanner/internal/outcome"
	"github.com/local/lessonplanner/internal/source"
	"github.com/local/lessonplanner/internal/storage"
	"github.com/local/lessonplanner/internal/summarize"
)

// TemplateLoader resolves a template reference to DOCX bytes.
type TemplateLoader interface {
	Load(ctx context.Context, ref string) ([]byte, error)
}

type Normalizer interface {
	Normalize(ctx context.Context, b source.Bundle) outcome.Result[string]
}

type Options struct {
	DefaultTemplate string
	HeadlineCount   int
	ReplaceAll      bool
	FileNamePrefix  string
}

// Request is one generation. FallbackText is used as the source text when the bundle
// normalizes to nothing (a web search with no usable hits). Template, when set, takes
// precedence over TemplateRef.
type Request struct {
	Bundle       source.Bundle
	Meta         lesson.Meta
	TemplateRef  string
	Template     []byte
	FallbackText string
}

// Extraction is the text-side result, before any template is touched.
type Extraction struct {
	Text     string
	Fields   lesson.Fields
	Headline []string
	Branch   outcome.Branch
	Reasons  []string
}

// Result is a finished lesson plan.
type Result struct {
	Extraction
	Document []byte
	FileName string
	Report   binder.Report
}

// Generator runs normalize, summarize, heuristics, assemble and bind for one request.
type Generator struct {
	norm       Normalizer
	summarizer *summarize.Summarizer
	extractors []heuristics.Extractor
	templates  TemplateLoader
	binder     *binder.Binder
	opts       Options
	newID      func() string
}

func New(norm Normalizer, summarizer *summarize.Summarizer, templates TemplateLoader, opts Options) *Generator {
	if opts.HeadlineCount <= 0 {
		opts.HeadlineCount = 6
	}
	if opts.FileNamePrefix == "" {
		opts.FileNamePrefix = "lesson_plan_"
	}
	return &Generator{
		norm:       norm,
		summarizer: summarizer,
		extractors: heuristics.Default(summarizer),
		templates:  templates,
		binder:     binder.New(binder.Options{ReplaceAll: opts.ReplaceAll}),
		opts:       opts,
		newID:      func() string { return uuid.NewString()[:8] },
	}
}

// Extract derives the lesson fields. Only an unreadable source is an error.
func (g *Generator) Extract(ctx context.Context, req Request) (Extraction, error) {
	kind := req.Bundle.Kind().String()
	res := g.norm.Normalize(ctx, req.Bundle)
	if res.IsFatal() {
		metrics.IncGeneration(kind, outcome.Fatal.String())
		return Extraction{Branch: outcome.Fatal}, res.Err
	}

	ext := Extraction{Text: res.Value, Branch: res.Branch}
	if res.Branch == outcome.Degraded {
		ext.Reasons = append(ext.Reasons, res.Reason)
	}
	if strings.TrimSpace(ext.Text) == "" && req.FallbackText != "" {
		ext.Text = normalize.Clean(req.FallbackText, normalize.DefaultMaxChars)
	}

	start := time.Now()
	var (
		extracted map[lesson.Field]string
		headline  outcome.Result[[]string]
	)
	eg, _ := errgroup.WithContext(ctx)
	eg.Go(func() error {
		extracted = heuristics.Run(g.extractors, ext.Text)
		return nil
	})
	eg.Go(func() error {
		headline = g.summarizer.Summarize(ext.Text, g.opts.HeadlineCount)
		return nil
	})
	_ = eg.Wait()
	metrics.ObserveStage("heuristics", time.Since(start))

	ext.Headline = headline.Value
	if headline.Branch == outcome.Degraded {
		ext.Branch = outcome.Degraded
		ext.Reasons = append(ext.Reasons, headline.Reason)
	}
	ext.Fields = lesson.Assemble(req.Meta, extracted)
	for _, r := range ext.Reasons {
		metrics.IncDegradation(r)
	}
	return ext, nil
}

// Generate produces the bound DOCX. The returned error is an IngestionError for an
// unreadable source or template; every other problem only degrades the output.
func (g *Generator) Generate(ctx context.Context, req Request) (Result, error) {
	kind := req.Bundle.Kind().String()
	ext, err := g.Extract(ctx, req)
	if err != nil {
		return Result{Extraction: ext}, err
	}

	tpl := req.Template
	if tpl == nil {
		tpl, err = g.loadTemplate(ctx, req.TemplateRef)
	}
	if err != nil {
		metrics.IncGeneration(kind, outcome.Fatal.String())
		return Result{Extraction: ext}, outcome.Ingestion("template", err)
	}

	start := time.Now()
	doc, rep, err := g.binder.BindBytes(tpl, ext.Fields)
	metrics.ObserveStage("bind", time.Since(start))
	if err != nil {
		metrics.IncGeneration(kind, outcome.Fatal.String())
		return Result{Extraction: ext}, err
	}
	metrics.AddBindings(len(rep.Labeled), len(rep.Bracketed), len(rep.Unfilled))
	metrics.IncGeneration(kind, ext.Branch.String())

	out := Result{
		Extraction: ext,
		Document:   doc,
		FileName:   g.opts.FileNamePrefix + g.newID() + ".docx",
		Report:     rep,
	}
	log.Info().
		Str("source", kind).
		Str("branch", ext.Branch.String()).
		Strs("reasons", ext.Reasons).
		Int("labeled", len(rep.Labeled)).
		Int("bracketed", len(rep.Bracketed)).
		Int("unfilled", len(rep.Unfilled)).
		Str("file", out.FileName).
		Msg("lesson plan generated")
	return out, nil
}

func (g *Generator) loadTemplate(ctx context.Context, ref string) ([]byte, error) {
	if ref == "" {
		ref = g.opts.DefaultTemplate
	}
	if ref == "" || g.templates == nil {
		return nil, outcome.ErrTemplateNotFound
	}
	data, err := g.templates.Load(ctx, ref)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", ref, outcome.ErrTemplateNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", ref, err)
	}
	return data, nil
}
