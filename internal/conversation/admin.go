package conversation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/local/lessonplanner/internal/session"
)

func (c *Controller) isAdmin(chatID int64) bool {
	return c.opts.AdminID != 0 && chatID == c.opts.AdminID
}

// adminCommand handles the slash shortcuts. It reports whether text was one of them.
func (c *Controller) adminCommand(ctx context.Context, s *session.Session, chatID int64, text string) bool {
	cmd, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)
	switch {
	case strings.HasPrefix(cmd, CmdAdmin):
	case cmd == CmdSetTarget, cmd == CmdShowTarget, cmd == CmdSendTarget:
	default:
		return false
	}
	if !c.isAdmin(chatID) {
		log.Warn().Int64("chat_id", chatID).Str("command", cmd).Msg("admin command from non-admin")
		c.reply(ctx, chatID, msgUnauthorized, nil)
		return true
	}

	switch cmd {
	case CmdSetTarget:
		id, ok := parseChatID(arg)
		if !ok {
			c.reply(ctx, chatID, msgTargetUsage, nil)
			return true
		}
		c.setTarget(ctx, chatID, id)
	case CmdShowTarget:
		c.showTarget(ctx, chatID)
	case CmdSendTarget:
		if arg == "" {
			c.reply(ctx, chatID, msgSendUsage, nil)
			return true
		}
		c.forward(ctx, chatID, arg)
	default:
		s.State = AdminMenu
		c.reply(ctx, chatID, msgAdminMenu, adminKeyboard)
	}
	return true
}

func (c *Controller) onAdminMenu(ctx context.Context, s *session.Session, ev Event) {
	switch ev.Text {
	case ChoiceAdminSend:
		s.State = AdminSendMessage
		c.reply(ctx, ev.ChatID, msgAdminAskMessage, nil)
	case ChoiceAdminShow:
		c.showTarget(ctx, ev.ChatID)
	case ChoiceAdminTarget:
		s.State = AdminSetTarget
		c.reply(ctx, ev.ChatID, msgAdminAskTarget, nil)
	case ChoiceAdminTemplate:
		s.State = AdminSetTemplate
		c.reply(ctx, ev.ChatID, msgAdminAskTemplate, nil)
	case ChoiceAdminExit:
		s.State = Idle
		c.reply(ctx, ev.ChatID, msgAdminExit, nil)
	default:
		s.State = Idle
		c.reply(ctx, ev.ChatID, msgAdminUnknown, nil)
	}
}

func (c *Controller) onAdminMessage(ctx context.Context, s *session.Session, ev Event) {
	s.State = AdminMenu
	c.forward(ctx, ev.ChatID, ev.Text)
}

func (c *Controller) onAdminTarget(ctx context.Context, s *session.Session, ev Event) {
	s.State = AdminMenu
	id, ok := parseChatID(ev.Text)
	if !ok {
		c.reply(ctx, ev.ChatID, msgTargetInvalid, nil)
		return
	}
	c.setTarget(ctx, ev.ChatID, id)
}

func (c *Controller) onAdminTemplate(ctx context.Context, s *session.Session, ev Event) {
	s.State = AdminMenu
	ref := ev.Text
	if c.templates == nil || !c.templates.Exists(ctx, ref) {
		c.reply(ctx, ev.ChatID, fmt.Sprintf(msgTemplatePathUnset, ref), nil)
		return
	}
	s.TemplateRef = ref
	c.reply(ctx, ev.ChatID, fmt.Sprintf(msgTemplatePathSet, ref), nil)
}

// target returns the runtime override, else the configured default. Zero means none.
func (c *Controller) target(ctx context.Context) int64 {
	id, ok, err := c.sessions.Target(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("loading broadcast target failed")
	}
	if ok && id != 0 {
		return id
	}
	return c.opts.DefaultTarget
}

func (c *Controller) setTarget(ctx context.Context, chatID, id int64) {
	if err := c.sessions.SetTarget(ctx, id); err != nil {
		log.Error().Err(err).Msg("saving broadcast target failed")
		c.reply(ctx, chatID, fmt.Sprintf(msgFailed, err), nil)
		return
	}
	log.Info().Int64("admin", chatID).Int64("target", id).Msg("broadcast target set")
	c.reply(ctx, chatID, fmt.Sprintf(msgTargetSet, id), nil)
}

func (c *Controller) showTarget(ctx context.Context, chatID int64) {
	cur := "None"
	if id := c.target(ctx); id != 0 {
		cur = strconv.FormatInt(id, 10)
	}
	c.reply(ctx, chatID, fmt.Sprintf(msgCurrentTarget, cur), nil)
}

func (c *Controller) forward(ctx context.Context, chatID int64, text string) {
	target := c.target(ctx)
	if target == 0 {
		c.reply(ctx, chatID, msgNoTarget, nil)
		return
	}
	if err := c.tr.SendMessage(ctx, target, text, nil); err != nil {
		log.Error().Err(err).Int64("target", target).Msg("forward to target failed")
		c.reply(ctx, chatID, fmt.Sprintf(msgFailed, err), nil)
		return
	}
	c.reply(ctx, chatID, fmt.Sprintf(msgSentTo, target), nil)
}

// parseChatID accepts digits only.
func parseChatID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
