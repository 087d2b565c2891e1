package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const telegramAPIBase = "https://api.telegram.org"

// Telegram delivers artifacts to a single chat through the Bot API.
// Token and chat id come from config; anything beyond that (sessions,
// credential rotation) is out of scope.
type Telegram struct {
	token      string
	chatID     string
	stagingDir string
	client     *http.Client
	apiBase    string
}

// NewTelegram creates a Telegram deliverer. stagingDir is the only
// directory images may be sent from.
func NewTelegram(token, chatID, stagingDir string) *Telegram {
	return &Telegram{
		token:      token,
		chatID:     chatID,
		stagingDir: stagingDir,
		client:     &http.Client{Timeout: 30 * time.Second},
		apiBase:    telegramAPIBase,
	}
}

// SendText delivers a plain text message via sendMessage
func (t *Telegram) SendText(ctx context.Context, text string) error {
	form := url.Values{}
	form.Set("chat_id", t.chatID)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.methodURL("sendMessage"),
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return t.do(req)
}

// SendImage uploads a staged image via sendPhoto. The path must be inside
// the staging directory; the Bot API cannot read anything else.
func (t *Telegram) SendImage(ctx context.Context, path, caption string) error {
	if err := t.checkStaged(path); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open staged image: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("chat_id", t.chatID); err != nil {
		return err
	}
	if caption != "" {
		if err := writer.WriteField("caption", caption); err != nil {
			return err
		}
	}
	part, err := writer.CreateFormFile("photo", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("read staged image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.methodURL("sendPhoto"), &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return t.do(req)
}

// checkStaged rejects image paths outside the staging directory
func (t *Telegram) checkStaged(path string) error {
	rel, err := filepath.Rel(t.stagingDir, path)
	if err != nil || !filepath.IsLocal(rel) {
		return fmt.Errorf("image %s is not inside the staging directory %s", path, t.stagingDir)
	}
	return nil
}

// do executes the request and turns non-2xx responses into errors
func (t *Telegram) do(req *http.Request) error {
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram API status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

// methodURL builds the Bot API endpoint for a method
func (t *Telegram) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.apiBase, t.token, method)
}
