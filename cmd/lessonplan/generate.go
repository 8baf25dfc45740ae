package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/local/lessonplanner/internal/conversation"
	"github.com/local/lessonplanner/internal/lesson"
	"github.com/local/lessonplanner/internal/normalize"
	"github.com/local/lessonplanner/internal/pdftext"
	"github.com/local/lessonplanner/internal/pipeline"
	"github.com/local/lessonplanner/internal/source"
	"github.com/local/lessonplanner/internal/storage"
	"github.com/local/lessonplanner/internal/summarize"
	"github.com/local/lessonplanner/internal/websearch"
)

var (
	pdfPath     string
	textPath    string
	chapter     string
	meta        lesson.Meta
	templateRef string
	outPath     string
)

var errNoInput = errors.New("exactly one of --pdf, --text-file or --chapter is required")

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a lesson plan DOCX",
	Example: `  lessonplan generate --pdf chapter3.pdf --grade 5 --subject Science
  lessonplan generate --text-file notes.txt --template "./Sample Lesson Plan.docx" -o plan.docx
  lessonplan generate --chapter "Photosynthesis" --grade 7 --subject Biology`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Print the extracted lesson fields as JSON without touching a template",
	Args:  cobra.NoArgs,
	RunE:  runFields,
}

func addInputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&pdfPath, "pdf", "", "PDF file to extract from")
	f.StringVar(&textPath, "text-file", "", "Plain text file with lesson content")
	f.StringVar(&chapter, "chapter", "", "Chapter name to search the web for")
	f.StringVar(&meta.Title, "title", "", "Lesson title")
	f.StringVar(&meta.Grade, "grade", "", "Grade")
	f.StringVar(&meta.Subject, "subject", "", "Subject")
	f.StringVar(&meta.Teacher, "teacher", "", "Teacher name")
	f.StringVar(&meta.Date, "date", "", "Lesson date")
}

// input is a resolved source plus the text to fall back on when it yields nothing.
type input struct {
	bundle   source.Bundle
	fallback string
	title    string
}

func readInput(ctx context.Context, search conversation.Searcher, results int) (input, error) {
	set := 0
	for _, v := range []string{pdfPath, textPath, chapter} {
		if strings.TrimSpace(v) != "" {
			set++
		}
	}
	if set != 1 {
		return input{}, errNoInput
	}

	switch {
	case pdfPath != "":
		data, err := os.ReadFile(pdfPath)
		if err != nil {
			return input{}, fmt.Errorf("read pdf: %w", err)
		}
		return input{bundle: source.FromPDF(data), title: "Lesson"}, nil
	case textPath != "":
		data, err := os.ReadFile(textPath)
		if err != nil {
			return input{}, fmt.Errorf("read text: %w", err)
		}
		return input{bundle: source.FromText(string(data)), title: "Pasted Lesson"}, nil
	default:
		query := conversation.SearchQuery(meta.Grade, meta.Subject, chapter)
		hits, err := search.Search(ctx, query, results)
		if err != nil {
			log.Warn().Err(err).Str("query", query).Msg("web search failed, using chapter name only")
			hits = nil
		}
		return input{bundle: source.FromWeb(hits), fallback: chapter, title: chapter}, nil
	}
}

func newGenerator() (*pipeline.Generator, *websearch.Client, error) {
	opener, err := pdftext.OpenerFor(cfg.PDF.Backend)
	if err != nil {
		return nil, nil, err
	}
	var objects storage.ObjectStore
	if strings.HasPrefix(templateRef, "s3://") || strings.HasPrefix(cfg.Template.DefaultPath, "s3://") {
		s3c, err := storage.NewS3Client(context.Background(), storage.S3Options{
			Region:          cfg.Storage.Region,
			Endpoint:        cfg.Storage.Endpoint,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			Password:        cfg.Template.S3Password,
		})
		if err != nil {
			return nil, nil, err
		}
		objects = s3c
	}
	web := websearch.New(websearch.Options{
		SearchURL:     cfg.Web.SearchURL,
		UserAgent:     cfg.Web.UserAgent,
		FetchTimeout:  cfg.Web.FetchTimeout,
		SearchTimeout: cfg.Web.SearchTimeout,
		MaxChars:      cfg.Pipeline.MaxChars,
	})
	norm := normalize.New(pdftext.NewExtractor(opener, cfg.PDF.Validate), web, normalize.Options{
		MaxChars:    cfg.Pipeline.MaxChars,
		MaxSources:  cfg.Web.MaxSources,
		Concurrency: cfg.Web.Concurrency,
	})
	gen := pipeline.New(norm, summarize.New(summarize.Options{}),
		storage.NewResolver(objects, nil, cfg.Template.FetchTimeout),
		pipeline.Options{
			DefaultTemplate: cfg.Template.DefaultPath,
			HeadlineCount:   cfg.Pipeline.HeadlineSentences,
			ReplaceAll:      cfg.Template.ReplaceAll,
		})
	return gen, web, nil
}

func request(in input) pipeline.Request {
	m := meta
	if m.Title == "" {
		m.Title = in.title
	}
	return pipeline.Request{Bundle: in.bundle, Meta: m, TemplateRef: templateRef, FallbackText: in.fallback}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	gen, web, err := newGenerator()
	if err != nil {
		return err
	}
	in, err := readInput(ctx, web, cfg.Web.SearchResults)
	if err != nil {
		return err
	}
	res, err := gen.Generate(ctx, request(in))
	if err != nil {
		return err
	}

	out := outPath
	if out == "" {
		out = res.FileName
	}
	if err := os.WriteFile(out, res.Document, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	abs, _ := filepath.Abs(out)
	log.Info().
		Str("branch", res.Branch.String()).
		Strs("reasons", res.Reasons).
		Int("unfilled", len(res.Report.Unfilled)).
		Msg("lesson plan generated")
	fmt.Fprintln(cmd.OutOrStdout(), abs)
	return nil
}

// fieldsOutput is the JSON printed by the fields command.
type fieldsOutput struct {
	Fields   lesson.Fields `json:"fields"`
	Headline []string      `json:"headline"`
	Branch   string        `json:"branch"`
	Reasons  []string      `json:"reasons,omitempty"`
}

func runFields(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	gen, web, err := newGenerator()
	if err != nil {
		return err
	}
	in, err := readInput(ctx, web, cfg.Web.SearchResults)
	if err != nil {
		return err
	}
	ext, err := gen.Extract(ctx, request(in))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(fieldsOutput{
		Fields:   ext.Fields,
		Headline: ext.Headline,
		Branch:   ext.Branch.String(),
		Reasons:  ext.Reasons,
	})
}
