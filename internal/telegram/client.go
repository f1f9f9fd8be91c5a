// Package telegram implements the chat transport over the Telegram Bot
// API. Long texts are chunked to the API's message limit before sending.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	defaultTimeout = 30 * time.Second

	// maxMessageRunes is the Bot API limit for one text message.
	maxMessageRunes = 4096
)

// Config holds the transport settings.
type Config struct {
	BaseURL string // optional, for tests
	Token   string
	Timeout time.Duration
}

// Client is an HTTP client for the Bot API.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	log     zerolog.Logger
}

// New creates a Bot API client.
func New(cfg Config, log zerolog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   cfg.Token,
		httpc:   &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "telegram").Logger(),
	}
}

// SendMessage delivers text to a chat, splitting it into API-sized
// chunks when needed. Chunks are sent in order and the first failure
// aborts the rest.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	for _, chunk := range splitMessage(text) {
		form := url.Values{
			"chat_id":    {strconv.FormatInt(chatID, 10)},
			"text":       {chunk},
			"parse_mode": {"HTML"},
		}
		if err := c.call(ctx, "sendMessage", "application/x-www-form-urlencoded", strings.NewReader(form.Encode())); err != nil {
			return fmt.Errorf("SendMessage: %w", err)
		}
	}
	return nil
}

// SendPhoto delivers a PNG image with an optional caption.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, photo []byte, caption string) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("chat_id", strconv.FormatInt(chatID, 10)); err != nil {
		return fmt.Errorf("SendPhoto: writing chat_id field: %w", err)
	}
	if caption != "" {
		if err := mw.WriteField("caption", caption); err != nil {
			return fmt.Errorf("SendPhoto: writing caption field: %w", err)
		}
	}
	part, err := mw.CreateFormFile("photo", "chart.png")
	if err != nil {
		return fmt.Errorf("SendPhoto: creating photo part: %w", err)
	}
	if _, err := part.Write(photo); err != nil {
		return fmt.Errorf("SendPhoto: writing photo bytes: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("SendPhoto: closing multipart body: %w", err)
	}

	if err := c.call(ctx, "sendPhoto", mw.FormDataContentType(), &body); err != nil {
		return fmt.Errorf("SendPhoto: %w", err)
	}
	return nil
}

// SendChatAction sets a transient status indicator like "typing".
func (c *Client) SendChatAction(ctx context.Context, chatID int64, action string) error {
	form := url.Values{
		"chat_id": {strconv.FormatInt(chatID, 10)},
		"action":  {action},
	}
	if err := c.call(ctx, "sendChatAction", "application/x-www-form-urlencoded", strings.NewReader(form.Encode())); err != nil {
		return fmt.Errorf("SendChatAction: %w", err)
	}
	return nil
}

// apiResponse is the envelope every Bot API method returns.
type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

func (c *Client) call(ctx context.Context, method, contentType string, body io.Reader) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("building %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decoding %s response: %w", method, err)
	}
	if !envelope.OK {
		return fmt.Errorf("%s rejected: code %d: %s", method, envelope.ErrorCode, envelope.Description)
	}
	return nil
}

// splitMessage cuts text into chunks of at most maxMessageRunes runes,
// preferring the last newline inside each window so paragraphs stay
// whole.
func splitMessage(text string) []string {
	runes := []rune(text)
	if len(runes) <= maxMessageRunes {
		return []string{text}
	}

	var chunks []string
	for len(runes) > maxMessageRunes {
		cut := maxMessageRunes
		for i := maxMessageRunes - 1; i > 0; i-- {
			if runes[i] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, strings.TrimRight(string(runes[:cut]), "\n"))
		if cut < len(runes) && runes[cut] == '\n' {
			cut++
		}
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
