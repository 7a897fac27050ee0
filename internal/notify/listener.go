package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const helpText = "Commands:\n/status - latest result for every target\n/summary - same as /status"

// Bot is the slice of the Telegram client the listener needs.
type Bot interface {
	GetUpdates(ctx context.Context, offset int64, wait time.Duration) ([]Update, error)
	Send(ctx context.Context, title, text string) error
	ChatID() string
}

// Listener answers chat commands with a rendered status summary. Only
// messages from the configured chat are considered.
type Listener struct {
	Bot         Bot
	Render      func() string
	Log         *zap.Logger
	PollTimeout time.Duration

	newBackOff func() backoff.BackOff
}

func NewListener(bot Bot, render func() string, log *zap.Logger) *Listener {
	if log == nil {
		log = zap.NewNop()
	}
	return &Listener{
		Bot:         bot,
		Render:      render,
		Log:         log,
		PollTimeout: 30 * time.Second,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff(
				backoff.WithInitialInterval(time.Second),
				backoff.WithMaxInterval(time.Minute),
				backoff.WithMaxElapsedTime(0),
			)
		},
	}
}

// Run polls until ctx is cancelled. It returns nil on shutdown.
func (l *Listener) Run(ctx context.Context) error {
	if l.Bot == nil {
		return nil
	}
	if t, ok := l.Bot.(Toggler); ok && !t.Enabled() {
		return nil
	}

	bo := l.newBackOff()
	bo.Reset()
	var offset int64
	for {
		if ctx.Err() != nil {
			return nil
		}
		updates, err := l.Bot.GetUpdates(ctx, offset, l.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			wait := bo.NextBackOff()
			if wait == backoff.Stop {
				wait = time.Minute
			}
			l.Log.Warn("command_poll_failed", zap.Error(err), zap.Duration("retry_in", wait))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
			}
			continue
		}
		bo.Reset()

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			l.handle(ctx, u)
		}
	}
}

func (l *Listener) handle(ctx context.Context, u Update) {
	defer func() {
		if r := recover(); r != nil {
			l.Log.Warn("command_failed", zap.String("error", fmt.Sprint(r)))
		}
	}()

	if u.Message == nil || strconv.FormatInt(u.Message.Chat.ID, 10) != l.Bot.ChatID() {
		return
	}
	var reply string
	switch parseCommand(u.Message.Text) {
	case "/status", "/summary":
		reply = l.Render()
	case "/help", "/start":
		reply = helpText
	default:
		return
	}

	ctx, cancel := context.WithTimeout(ctx, SendTimeout)
	defer cancel()
	if err := l.Bot.Send(ctx, "", reply); err != nil {
		l.Log.Warn("command_reply_failed", zap.Error(err))
	}
}

// parseCommand extracts "/cmd" from "/cmd@SomeBot args".
func parseCommand(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return strings.ToLower(cmd)
}
