package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	maxRetries       = 3
	initialBackoff   = time.Second
	maxResponseBytes = 10 << 20 // 10 MiB, prevent unbounded reads from API responses.
)

// Client is a thin HTTP wrapper around the Slack Web API. Tokens are read
// through functions on every call so rotated credentials take effect
// without rebuilding the client.
type Client struct {
	botToken func() string
	appToken func() string
	baseURL  string
	http     *http.Client
}

// NewClient creates a Web API client.
func NewClient(botToken, appToken func() string, baseURL string) *Client {
	return &Client{
		botToken: botToken,
		appToken: appToken,
		baseURL:  baseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// apiResponse is the envelope every Web API method shares.
type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// APIError is a Web API error response.
type APIError struct {
	Method string
	Code   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("slack: %s failed: %s", e.Method, e.Code)
}

type okChecker interface {
	ok() (bool, string)
}

func (r apiResponse) ok() (bool, string) {
	return r.OK, r.Error
}

// do sends a JSON POST request to the given Web API method and decodes
// the response. It handles 429 rate limiting with Retry-After (max 3
// retries, exponential backoff).
func do[T okChecker](ctx context.Context, c *Client, token func() string, method string, payload any) (*T, error) {
	url := c.baseURL + "/" + method

	var data []byte
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("slack: marshal %s request: %w", method, err)
		}
	}

	backoff := initialBackoff

	for attempt := range maxRetries {
		var body io.Reader
		if data != nil {
			body = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
		if err != nil {
			return nil, fmt.Errorf("slack: create %s request: %w", method, err)
		}
		req.Header.Set("Authorization", "Bearer "+token())
		if data != nil {
			req.Header.Set("Content-Type", "application/json; charset=utf-8")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("slack: %s request failed: %w", method, err)
		}

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("slack: read %s response: %w", method, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxRetries-1 {
			if after, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && after > 0 {
				backoff = time.Duration(after) * time.Second
			}

			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
			backoff *= 2
			continue
		}

		var decoded T
		if err := json.Unmarshal(respBody, &decoded); err != nil {
			return nil, fmt.Errorf("slack: decode %s response: %w", method, err)
		}

		if ok, code := decoded.ok(); !ok {
			return nil, &APIError{Method: method, Code: code}
		}

		return &decoded, nil
	}

	return nil, fmt.Errorf("slack: %s: max retries exceeded", method)
}

// AuthTestResponse is the auth.test response.
type AuthTestResponse struct {
	apiResponse
	URL    string `json:"url"`
	Team   string `json:"team"`
	User   string `json:"user"`
	TeamID string `json:"team_id"`
	UserID string `json:"user_id"`
	BotID  string `json:"bot_id"`
}

// AuthTest validates the bot token and returns the bot's identity.
func (c *Client) AuthTest(ctx context.Context) (*AuthTestResponse, error) {
	return do[AuthTestResponse](ctx, c, c.botToken, "auth.test", nil)
}

// PostMessageRequest is the request body for chat.postMessage.
type PostMessageRequest struct {
	Channel  string `json:"channel"`
	Text     string `json:"text"`
	ThreadTS string `json:"thread_ts,omitempty"`
}

// PostMessageResponse is the chat.postMessage response.
type PostMessageResponse struct {
	apiResponse
	Channel string `json:"channel"`
	TS      string `json:"ts"`
}

// PostMessage sends a message to a conversation.
func (c *Client) PostMessage(ctx context.Context, req PostMessageRequest) (*PostMessageResponse, error) {
	return do[PostMessageResponse](ctx, c, c.botToken, "chat.postMessage", req)
}

// ConnectionsOpenResponse is the apps.connections.open response.
type ConnectionsOpenResponse struct {
	apiResponse
	URL string `json:"url"`
}

// ConnectionsOpen requests a fresh Socket Mode WebSocket URL. It
// authenticates with the app token, not the bot token.
func (c *Client) ConnectionsOpen(ctx context.Context) (*ConnectionsOpenResponse, error) {
	return do[ConnectionsOpenResponse](ctx, c, c.appToken, "apps.connections.open", nil)
}

// respondRequest is the body posted to a response_url.
type respondRequest struct {
	Text            string `json:"text"`
	ResponseType    string `json:"response_type,omitempty"`
	ReplaceOriginal bool   `json:"replace_original,omitempty"`
}

// Respond posts to the response_url of an interaction, optionally
// replacing the originating message.
func (c *Client) Respond(ctx context.Context, responseURL, text string, replaceOriginal bool) error {
	data, err := json.Marshal(respondRequest{
		Text:            text,
		ResponseType:    "in_channel",
		ReplaceOriginal: replaceOriginal,
	})
	if err != nil {
		return fmt.Errorf("slack: marshal response_url request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, responseURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("slack: create response_url request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("slack: response_url request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack: response_url returned status %d", resp.StatusCode)
	}
	return nil
}
