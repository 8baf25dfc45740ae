package telegram

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultAPIBase         = "https://api.telegram.org"
	DefaultTimeout         = 30 * time.Second
	DefaultDownloadTimeout = 60 * time.Second
	SecretHeader           = "X-Telegram-Bot-Api-Secret-Token"

	maxDownload = 50 << 20
)

type Options struct {
	Token           string
	APIBase         string
	Timeout         time.Duration
	DownloadTimeout time.Duration
	HTTPClient      *http.Client
}

// Client talks to the Bot API. Calls are not retried.
type Client struct {
	http            *http.Client
	token           string
	apiBase         string
	timeout         time.Duration
	downloadTimeout time.Duration
}

func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, ErrMissingToken
	}
	if opts.APIBase == "" {
		opts.APIBase = DefaultAPIBase
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.DownloadTimeout <= 0 {
		opts.DownloadTimeout = DefaultDownloadTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		http:            hc,
		token:           opts.Token,
		apiBase:         strings.TrimRight(opts.APIBase, "/"),
		timeout:         opts.Timeout,
		downloadTimeout: opts.DownloadTimeout,
	}, nil
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, method)
}

func (c *Client) fileURL(path string) string {
	return fmt.Sprintf("%s/file/bot%s/%s", c.apiBase, c.token, strings.TrimLeft(path, "/"))
}

func (c *Client) call(ctx context.Context, method, contentType string, body io.Reader, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), body)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	var r apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&r); err != nil {
		return &APIError{Method: method, Code: resp.StatusCode, Description: "undecodable response"}
	}
	if !r.OK {
		code := r.ErrorCode
		if code == 0 {
			code = resp.StatusCode
		}
		return &APIError{Method: method, Code: code, Description: r.Description}
	}
	if out != nil {
		if err := json.Unmarshal(r.Result, out); err != nil {
			return fmt.Errorf("telegram %s result: %w", method, err)
		}
	}
	return nil
}

func (c *Client) callJSON(ctx context.Context, method string, payload, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	return c.call(ctx, method, "application/json", bytes.NewReader(b), out)
}

// SendMessage posts text to a chat. A non-empty keyboard is shown as a reply keyboard.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, keyboard [][]string) error {
	payload := struct {
		ChatID      int64          `json:"chat_id"`
		Text        string         `json:"text"`
		ReplyMarkup *replyKeyboard `json:"reply_markup,omitempty"`
	}{ChatID: chatID, Text: text, ReplyMarkup: newKeyboard(keyboard)}
	return c.callJSON(ctx, "sendMessage", payload, nil)
}

// SendDocument uploads data as a file attachment.
func (c *Client) SendDocument(ctx context.Context, chatID int64, filename string, data []byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("chat_id", fmt.Sprint(chatID)); err != nil {
		return err
	}
	part, err := w.CreateFormFile("document", filename)
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	log.Debug().Int64("chat_id", chatID).Str("file", filename).Int("bytes", len(data)).Msg("sending document")
	return c.call(ctx, "sendDocument", w.FormDataContentType(), &buf, nil)
}

// DownloadFile resolves a file id with getFile and fetches its content.
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	var f File
	if err := c.callJSON(ctx, "getFile", map[string]string{"file_id": fileID}, &f); err != nil {
		return nil, err
	}
	if f.FilePath == "" {
		return nil, &APIError{Method: "getFile", Code: http.StatusNotFound, Description: "no file_path"}
	}

	ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.fileURL(f.FilePath), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", fileID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Method: "file", Code: resp.StatusCode, Description: resp.Status}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload+1))
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", fileID, err)
	}
	if len(data) > maxDownload {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

// GetMe checks the token.
func (c *Client) GetMe(ctx context.Context) (User, error) {
	var u User
	err := c.callJSON(ctx, "getMe", struct{}{}, &u)
	return u, err
}

// SetWebhook registers url with Telegram; secret is echoed back in SecretHeader.
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	payload := map[string]any{"url": url, "allowed_updates": []string{"message"}}
	if secret != "" {
		payload["secret_token"] = secret
	}
	return c.callJSON(ctx, "setWebhook", payload, nil)
}

// VerifySecret reports whether r carries the configured webhook secret.
// An empty secret accepts every request.
func VerifySecret(r *http.Request, secret string) bool {
	if secret == "" {
		return true
	}
	got := r.Header.Get(SecretHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(secret)) == 1
}
