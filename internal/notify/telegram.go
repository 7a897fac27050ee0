package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
)

const DefaultTelegramAPI = "https://api.telegram.org"

// ErrTelegramUnavailable is returned while the circuit breaker is open.
var ErrTelegramUnavailable = errors.New("telegram: circuit open")

// Telegram sends messages through the Bot API to one configured chat.
type Telegram struct {
	BaseURL string
	Client  *http.Client

	token   string
	chatID  string
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewTelegram returns nil when either credential is missing. An empty
// baseURL selects the public Bot API.
func NewTelegram(baseURL, token, chatID string) *Telegram {
	if token == "" || chatID == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = DefaultTelegramAPI
	}
	return &Telegram{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
		token:   token,
		chatID:  chatID,
		breaker: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:        "telegram",
			MaxRequests: 1,
			Timeout:     time.Minute,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 5
			},
		}),
	}
}

func (t *Telegram) Enabled() bool {
	return t != nil && t.token != "" && t.chatID != ""
}

// ChatID is the destination every message goes to.
func (t *Telegram) ChatID() string {
	if t == nil {
		return ""
	}
	return t.chatID
}

func (t *Telegram) Send(ctx context.Context, title, text string) error {
	if !t.Enabled() {
		return errors.New("telegram disabled")
	}
	_, err := t.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, t.sendMessage(ctx, compose(title, text))
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrTelegramUnavailable
	}
	return err
}

// BreakerState exposes the circuit state for diagnostics.
func (t *Telegram) BreakerState() gobreaker.State {
	return t.breaker.State()
}

type apiResponse[T any] struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      T      `json:"result"`
}

func (t *Telegram) sendMessage(ctx context.Context, text string) error {
	form := url.Values{
		"chat_id": {t.chatID},
		"text":    {text},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.method("sendMessage"), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out apiResponse[json.RawMessage]
	return do(t.Client, req, &out)
}

type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	Chat      struct {
		ID int64 `json:"id"`
	} `json:"chat"`
}

// GetUpdates long-polls for inbound messages. It bypasses the breaker: an
// idle long poll is not a delivery failure.
func (t *Telegram) GetUpdates(ctx context.Context, offset int64, wait time.Duration) ([]Update, error) {
	if !t.Enabled() {
		return nil, errors.New("telegram disabled")
	}
	q := url.Values{
		"offset":          {strconv.FormatInt(offset, 10)},
		"timeout":         {strconv.Itoa(int(wait / time.Second))},
		"allowed_updates": {`["message"]`},
	}
	// The client timeout is for short calls; the poll carries its own deadline.
	ctx, cancel := context.WithTimeout(ctx, wait+10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.method("getUpdates")+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	client := *t.Client
	client.Timeout = 0
	var out apiResponse[[]Update]
	if err := do(&client, req, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

func (t *Telegram) method(name string) string {
	return strings.TrimRight(t.BaseURL, "/") + "/bot" + t.token + "/" + name
}

type envelope interface {
	ok() (bool, string)
}

func do(client *http.Client, req *http.Request, out envelope) error {
	resp, err := client.Do(req)
	if err != nil {
		// Transport errors embed the URL, which carries the bot token.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return fmt.Errorf("telegram %s: %w", req.Method, uerr.Err)
		}
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("telegram: read response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("telegram: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("telegram: decode response: %w", err)
	}
	if ok, desc := out.ok(); !ok {
		return fmt.Errorf("telegram: api error: %s", desc)
	}
	return nil
}

func (r *apiResponse[T]) ok() (bool, string) {
	return r.OK, r.Description
}
