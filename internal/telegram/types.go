package telegram

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

type User struct {
	ID       int64  `json:"id"`
	IsBot    bool   `json:"is_bot"`
	Username string `json:"username,omitempty"`
}

type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type,omitempty"`
}

type Document struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
}

type PhotoSize struct {
	FileID string `json:"file_id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Message struct {
	MessageID int64       `json:"message_id"`
	From      *User       `json:"from,omitempty"`
	Chat      Chat        `json:"chat"`
	Text      string      `json:"text,omitempty"`
	Caption   string      `json:"caption,omitempty"`
	Document  *Document   `json:"document,omitempty"`
	Photo     []PhotoSize `json:"photo,omitempty"`
}

// Update is the subset of the Bot API update object the bot reacts to.
type Update struct {
	UpdateID      int64    `json:"update_id"`
	Message       *Message `json:"message,omitempty"`
	EditedMessage *Message `json:"edited_message,omitempty"`
}

// Kind labels an update for logs and metrics.
func (u Update) Kind() string {
	m := u.Message
	switch {
	case m == nil:
		return "other"
	case m.Document != nil:
		return "document"
	case len(m.Photo) > 0:
		return "photo"
	case m.Text != "":
		return "text"
	default:
		return "other"
	}
}

var ErrEmptyUpdate = errors.New("empty update body")

// DecodeUpdate reads one webhook payload.
func DecodeUpdate(r io.Reader) (Update, error) {
	var u Update
	if err := json.NewDecoder(io.LimitReader(r, 1<<20)).Decode(&u); err != nil {
		if errors.Is(err, io.EOF) {
			return Update{}, ErrEmptyUpdate
		}
		return Update{}, fmt.Errorf("decode update: %w", err)
	}
	return u, nil
}

type File struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
	FileSize int64  `json:"file_size,omitempty"`
}

type keyboardButton struct {
	Text string `json:"text"`
}

type replyKeyboard struct {
	Keyboard        [][]keyboardButton `json:"keyboard"`
	ResizeKeyboard  bool               `json:"resize_keyboard"`
	OneTimeKeyboard bool               `json:"one_time_keyboard"`
}

func newKeyboard(rows [][]string) *replyKeyboard {
	if len(rows) == 0 {
		return nil
	}
	kb := &replyKeyboard{ResizeKeyboard: true, OneTimeKeyboard: true}
	for _, row := range rows {
		btns := make([]keyboardButton, 0, len(row))
		for _, label := range row {
			btns = append(btns, keyboardButton{Text: label})
		}
		kb.Keyboard = append(kb.Keyboard, btns)
	}
	return kb
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters,omitempty"`
}
