package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/local/lessonplanner/internal/filetype"
	"github.com/local/lessonplanner/internal/lesson"
	"github.com/local/lessonplanner/internal/outcome"
	"github.com/local/lessonplanner/internal/pipeline"
	"github.com/local/lessonplanner/internal/session"
	"github.com/local/lessonplanner/internal/source"
)

func (c *Controller) onIdleText(ctx context.Context, s *session.Session, ev Event) {
	switch ev.Text {
	case ChoiceUploadPDF:
		s.State = AwaitPDF
		c.reply(ctx, ev.ChatID, msgAskPDF, nil)
	case ChoicePasteText:
		s.State = AwaitText
		c.reply(ctx, ev.ChatID, msgAskText, nil)
	case ChoiceFindWeb:
		s.State = AwaitGrade
		c.reply(ctx, ev.ChatID, msgAskGrade, nil)
	default:
		if len([]rune(ev.Text)) > c.opts.LongTextThreshold {
			s.Meta[session.KeyTextCandidate] = ev.Text
			s.State = ConfirmFromText
			c.reply(ctx, ev.ChatID, msgConfirmText, nil)
			return
		}
		c.reply(ctx, ev.ChatID, msgHelp, nil)
	}
}

func (c *Controller) onConfirm(ctx context.Context, s *session.Session, ev Event) {
	candidate := s.Meta[session.KeyTextCandidate]
	delete(s.Meta, session.KeyTextCandidate)
	s.State = Idle
	switch strings.ToLower(ev.Text) {
	case "yes", "y":
		c.reply(ctx, ev.ChatID, msgFromText, nil)
		c.generate(ctx, s, ev.ChatID, source.FromText(candidate), c.meta(s, defaultTextTitle), "")
	default:
		c.reply(ctx, ev.ChatID, msgCancelled, nil)
	}
}

func (c *Controller) onPastedText(ctx context.Context, s *session.Session, ev Event) {
	s.State = Idle
	c.reply(ctx, ev.ChatID, msgFromText, nil)
	c.generate(ctx, s, ev.ChatID, source.FromText(ev.Text), c.meta(s, defaultTextTitle), "")
}

func (c *Controller) onGrade(ctx context.Context, s *session.Session, ev Event) {
	s.ResetMeta()
	s.Meta[session.KeyGrade] = ev.Text
	s.State = AwaitSubject
	c.reply(ctx, ev.ChatID, msgAskSubject, nil)
}

func (c *Controller) onSubject(ctx context.Context, s *session.Session, ev Event) {
	s.Meta[session.KeySubject] = ev.Text
	s.State = AwaitChapter
	c.reply(ctx, ev.ChatID, msgAskChapter, nil)
}

func (c *Controller) onChapter(ctx context.Context, s *session.Session, ev Event) {
	chapter := ev.Text
	s.Meta[session.KeyChapter] = chapter
	s.State = Idle
	query := SearchQuery(s.Meta[session.KeyGrade], s.Meta[session.KeySubject], chapter)
	c.reply(ctx, ev.ChatID, fmt.Sprintf(msgSearching, query), nil)

	var hits []source.WebSource
	if c.search != nil {
		var err error
		hits, err = c.search.Search(ctx, query, c.opts.SearchResults)
		if err != nil {
			log.Warn().Err(err).Int64("chat_id", ev.ChatID).Str("query", query).Msg("web search failed; continuing without hits")
			hits = nil
		}
	}
	meta := lesson.Meta{
		Title:   chapter,
		Grade:   s.Meta[session.KeyGrade],
		Subject: s.Meta[session.KeySubject],
	}
	c.generate(ctx, s, ev.ChatID, source.FromWeb(hits), meta, chapter)
}

// SearchQuery is the web query for the find-a-lesson flow.
func SearchQuery(grade, subject, chapter string) string {
	return fmt.Sprintf("%s %s %s %s", grade, subject, chapter, searchSuffix)
}

func (c *Controller) onDocument(ctx context.Context, s *session.Session, ev Event) {
	awaitingPDF := s.State == AwaitPDF
	s.State = Idle

	data, err := c.tr.DownloadFile(ctx, ev.Document.FileID)
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", ev.ChatID).Str("file", ev.Document.FileName).Msg("download failed")
		c.reply(ctx, ev.ChatID, fmt.Sprintf(msgDownloadFailed, err), nil)
		return
	}

	info := c.detector.Detect(data, ev.Document.FileName)
	switch {
	case info.Kind == filetype.Template:
		ref, err := c.templates.SaveTemplate(ctx, ev.ChatID, data)
		if err != nil {
			log.Error().Err(err).Int64("chat_id", ev.ChatID).Msg("saving uploaded template failed")
			c.reply(ctx, ev.ChatID, fmt.Sprintf(msgFailed, err), nil)
			return
		}
		s.TemplateRef = ref
		log.Info().Int64("chat_id", ev.ChatID).Str("template", ref).Msg("session template set")
		c.reply(ctx, ev.ChatID, msgTemplateSaved, nil)
	case info.Kind == filetype.PDF && awaitingPDF:
		c.reply(ctx, ev.ChatID, msgFromPDF, nil)
		c.generate(ctx, s, ev.ChatID, source.FromPDF(data), c.meta(s, defaultPDFTitle), "")
	default:
		c.reply(ctx, ev.ChatID, msgOtherDocument, nil)
	}
}

func (c *Controller) meta(s *session.Session, defaultTitle string) lesson.Meta {
	title := s.Meta[session.KeyChapterTitle]
	if title == "" {
		title = defaultTitle
	}
	return lesson.Meta{
		Title:   title,
		Grade:   s.Meta[session.KeyGrade],
		Subject: s.Meta[session.KeySubject],
		Teacher: s.Meta[session.KeyTeacher],
		Date:    s.Meta[session.KeyDate],
	}
}

// generate runs the pipeline and delivers the result. The session is already Idle.
func (c *Controller) generate(ctx context.Context, s *session.Session, chatID int64, b source.Bundle, meta lesson.Meta, fallback string) {
	res, err := c.gen.Generate(ctx, pipeline.Request{
		Bundle:       b,
		Meta:         meta,
		TemplateRef:  s.TemplateRef,
		FallbackText: fallback,
	})
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Str("source", b.Kind().String()).Msg("generation failed")
		c.reply(ctx, chatID, failureMessage(err), nil)
		return
	}
	if err := c.tr.SendDocument(ctx, chatID, res.FileName, res.Document); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("send document failed")
		c.reply(ctx, chatID, fmt.Sprintf(msgSendFailed, err), nil)
		return
	}
	c.reply(ctx, chatID, msgGenerated, nil)
}

func failureMessage(err error) string {
	if errors.Is(err, outcome.ErrTemplateNotFound) {
		return msgNoTemplate
	}
	var ie *outcome.IngestionError
	if errors.As(err, &ie) && ie.Stage == "pdf" {
		return fmt.Sprintf(msgPDFFailed, ie.Err)
	}
	return fmt.Sprintf(msgFailed, err)
}
