package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func TestTelegram_SendPostsForm(t *testing.T) {
	var path, chat, text string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = r.ParseForm()
		chat = r.PostForm.Get("chat_id")
		text = r.PostForm.Get("text")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer ts.Close()

	tg := NewTelegram(ts.URL, "TOKEN", "42")
	if err := tg.Send(context.Background(), "", "❌ DOWN: api"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if path != "/botTOKEN/sendMessage" {
		t.Fatalf("path = %q", path)
	}
	if chat != "42" || text != "❌ DOWN: api" {
		t.Fatalf("form = chat %q text %q", chat, text)
	}
}

func TestTelegram_APIErrorIsReported(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer ts.Close()

	err := NewTelegram(ts.URL, "T", "1").Send(context.Background(), "", "x")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("err = %v", err)
	}
}

func TestTelegram_ErrorsDoNotLeakToken(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()

	err := NewTelegram(ts.URL, "SECRET", "1").Send(context.Background(), "", "x")
	if err == nil {
		t.Fatal("expected transport error")
	}
	if strings.Contains(err.Error(), "SECRET") {
		t.Fatalf("token leaked in error: %v", err)
	}
}

func TestTelegram_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	tg := NewTelegram(ts.URL, "T", "1")
	for i := 0; i < 5; i++ {
		_ = tg.Send(context.Background(), "", "x")
	}
	if tg.BreakerState() != gobreaker.StateOpen {
		t.Fatalf("state = %v, want open", tg.BreakerState())
	}
	err := tg.Send(context.Background(), "", "x")
	if !errors.Is(err, ErrTelegramUnavailable) {
		t.Fatalf("err = %v, want ErrTelegramUnavailable", err)
	}
	if calls.Load() != 5 {
		t.Fatalf("calls = %d, open breaker should short-circuit", calls.Load())
	}
}

func TestTelegram_GetUpdates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botT/getUpdates" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("offset") != "7" {
			t.Errorf("offset = %q", r.URL.Query().Get("offset"))
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":[{"update_id":7,"message":{"message_id":3,"text":"/status","chat":{"id":42}}}]}`))
	}))
	defer ts.Close()

	ups, err := NewTelegram(ts.URL, "T", "42").GetUpdates(context.Background(), 7, time.Second)
	if err != nil {
		t.Fatalf("get updates: %v", err)
	}
	if len(ups) != 1 || ups[0].Message == nil || ups[0].Message.Text != "/status" || ups[0].Message.Chat.ID != 42 {
		t.Fatalf("updates = %+v", ups)
	}
}

func TestTelegram_NilWithoutCredentials(t *testing.T) {
	if NewTelegram("", "", "1") != nil || NewTelegram("", "t", "") != nil {
		t.Fatal("expected nil telegram without credentials")
	}
	var tg *Telegram
	if tg.Enabled() {
		t.Fatal("nil telegram should be disabled")
	}
}
