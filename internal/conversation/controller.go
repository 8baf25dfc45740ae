package conversation

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/local/lessonplanner/internal/filetype"
	"github.com/local/lessonplanner/internal/limiter"
	"github.com/local/lessonplanner/internal/pipeline"
	"github.com/local/lessonplanner/internal/session"
	"github.com/local/lessonplanner/internal/source"
)

// Document is an attachment reference; the bytes are fetched through the Transport.
type Document struct {
	FileName string
	FileID   string
}

// Event is one inbound chat message.
type Event struct {
	ChatID   int64
	Text     string
	Document *Document
	Photo    bool
}

// Transport is the chat side of the bot.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard [][]string) error
	SendDocument(ctx context.Context, chatID int64, filename string, data []byte) error
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

type Searcher interface {
	Search(ctx context.Context, query string, max int) ([]source.WebSource, error)
}

type Generator interface {
	Generate(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
}

// Templates checks template references and stores uploaded ones.
type Templates interface {
	Exists(ctx context.Context, ref string) bool
	SaveTemplate(ctx context.Context, chatID int64, data []byte) (string, error)
}

type Deps struct {
	Transport Transport
	Sessions  session.Store
	Generator Generator
	Searcher  Searcher
	Templates Templates
	Detector  *filetype.Detector
	Locks     *limiter.Keyed
}

type Options struct {
	AdminID           int64
	DefaultTarget     int64
	LongTextThreshold int
	SearchResults     int
}

type handler func(c *Controller, ctx context.Context, s *session.Session, ev Event)

// textHandlers routes plain text by state.
var textHandlers = map[State]handler{
	Idle:             (*Controller).onIdleText,
	AwaitPDF:         (*Controller).onHelp,
	AwaitText:        (*Controller).onPastedText,
	AwaitGrade:       (*Controller).onGrade,
	AwaitSubject:     (*Controller).onSubject,
	AwaitChapter:     (*Controller).onChapter,
	ConfirmFromText:  (*Controller).onConfirm,
	AdminMenu:        (*Controller).onAdminMenu,
	AdminSendMessage: (*Controller).onAdminMessage,
	AdminSetTarget:   (*Controller).onAdminTarget,
	AdminSetTemplate: (*Controller).onAdminTemplate,
}

// Controller drives the per-chat conversation. Events for one chat are handled one at a
// time in arrival order; different chats run in parallel.
type Controller struct {
	tr        Transport
	sessions  session.Store
	gen       Generator
	search    Searcher
	templates Templates
	detector  *filetype.Detector
	locks     *limiter.Keyed
	opts      Options
}

func New(deps Deps, opts Options) *Controller {
	if opts.LongTextThreshold <= 0 {
		opts.LongTextThreshold = 120
	}
	if opts.SearchResults <= 0 {
		opts.SearchResults = 5
	}
	if deps.Detector == nil {
		deps.Detector = filetype.New()
	}
	if deps.Locks == nil {
		deps.Locks = limiter.NewKeyed()
	}
	return &Controller{
		tr:        deps.Transport,
		sessions:  deps.Sessions,
		gen:       deps.Generator,
		search:    deps.Searcher,
		templates: deps.Templates,
		detector:  deps.Detector,
		locks:     deps.Locks,
		opts:      opts,
	}
}

// Handle processes ev to completion while holding the chat's lock and saves the session.
func (c *Controller) Handle(ctx context.Context, ev Event) error {
	release, err := c.locks.Lock(ctx, strconv.FormatInt(ev.ChatID, 10))
	if err != nil {
		return err
	}
	defer release()

	s, err := c.sessions.Get(ctx, ev.ChatID)
	if err != nil {
		return err
	}
	if s.State == "" {
		s.State = Idle
	}
	if s.Meta == nil {
		s.Meta = map[string]string{}
	}
	from := s.State
	c.dispatch(ctx, &s, ev)
	if from != s.State {
		log.Debug().Int64("chat_id", ev.ChatID).Str("from", string(from)).Str("to", string(s.State)).Msg("conversation transition")
	}
	return c.sessions.Put(ctx, ev.ChatID, s)
}

func (c *Controller) dispatch(ctx context.Context, s *session.Session, ev Event) {
	text := strings.TrimSpace(ev.Text)

	if ev.Document == nil && text != "" && c.adminCommand(ctx, s, ev.ChatID, text) {
		return
	}
	if strings.EqualFold(text, CmdStart) && ev.Document == nil {
		s.ResetMeta()
		s.State = Idle
		c.reply(ctx, ev.ChatID, msgWelcome, startKeyboard)
		return
	}
	switch {
	case ev.Document != nil:
		c.onDocument(ctx, s, ev)
	case ev.Photo:
		c.reply(ctx, ev.ChatID, msgPhoto, nil)
	case text != "":
		if isAdminState(s.State) && !c.isAdmin(ev.ChatID) {
			s.State = Idle
		}
		h, ok := textHandlers[s.State]
		if !ok {
			log.Warn().Int64("chat_id", ev.ChatID).Str("state", string(s.State)).Msg("unknown state, resetting")
			s.State = Idle
			h = textHandlers[Idle]
		}
		ev.Text = text
		h(c, ctx, s, ev)
	}
}

func (c *Controller) reply(ctx context.Context, chatID int64, text string, keyboard [][]string) {
	if err := c.tr.SendMessage(ctx, chatID, text, keyboard); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("send message failed")
	}
}

func (c *Controller) onHelp(ctx context.Context, _ *session.Session, ev Event) {
	c.reply(ctx, ev.ChatID, msgHelp, nil)
}
