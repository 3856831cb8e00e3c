package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/pkg/types"
)

const telegramAPIBase = "https://api.telegram.org"

// Telegram sends alerts through the Telegram Bot API: sendMessage for the
// text, sendPhoto for the annotated frame when one is attached.
type Telegram struct {
	baseURL string
	token   string
	chatID  string
	client  *http.Client
}

// NewTelegram creates a notifier for the given bot token and chat.
func NewTelegram(token, chatID string) *Telegram {
	return &Telegram{
		baseURL: telegramAPIBase,
		token:   token,
		chatID:  chatID,
		client:  &http.Client{},
	}
}

// NewTelegramWithBase is used by tests to point at a fake API server.
func NewTelegramWithBase(baseURL, token, chatID string) *Telegram {
	t := NewTelegram(token, chatID)
	t.baseURL = strings.TrimRight(baseURL, "/")
	return t
}

// Notify implements Notifier.
func (t *Telegram) Notify(ctx context.Context, message string, frame *types.Frame) error {
	if err := t.sendMessage(ctx, message); err != nil {
		return err
	}
	if frame != nil && frame.Image != nil {
		return t.sendPhoto(ctx, frame)
	}
	return nil
}

func (t *Telegram) sendMessage(ctx context.Context, message string) error {
	form := url.Values{
		"chat_id": {t.chatID},
		"text":    {message},
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return t.do(req)
}

func (t *Telegram) sendPhoto(ctx context.Context, frame *types.Frame) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("chat_id", t.chatID); err != nil {
		return fmt.Errorf("failed to build telegram photo form: %w", err)
	}
	part, err := writer.CreateFormFile("photo", "alert.jpg")
	if err != nil {
		return fmt.Errorf("failed to build telegram photo form: %w", err)
	}
	if err := jpeg.Encode(part, frame.Image, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("failed to encode alert photo: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish telegram photo form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendPhoto", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return t.do(req)
}

func (t *Telegram) do(req *http.Request) error {
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		var apiErr struct {
			Description string `json:"description"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Description != "" {
			return fmt.Errorf("telegram API returned %d: %s", resp.StatusCode, apiErr.Description)
		}
		return fmt.Errorf("telegram API returned %d", resp.StatusCode)
	}
	return nil
}
