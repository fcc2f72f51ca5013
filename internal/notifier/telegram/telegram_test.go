package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/newthinker/alphapulse/internal/core"
	"github.com/newthinker/alphapulse/internal/notifier"
)

func TestTelegram_ImplementsNotifier(t *testing.T) {
	var _ notifier.Notifier = (*Telegram)(nil)
}

func TestTelegram_Name(t *testing.T) {
	tg := New("token", "chatid")
	if tg.Name() != "telegram" {
		t.Errorf("expected 'telegram', got '%s'", tg.Name())
	}
}

func TestTelegram_Init(t *testing.T) {
	tg := &Telegram{}

	cfg := notifier.Config{
		Params: map[string]any{
			"bot_token": "test-token",
			"chat_id":   "test-chat",
		},
	}

	err := tg.Init(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tg.botToken != "test-token" {
		t.Errorf("expected bot_token 'test-token', got '%s'", tg.botToken)
	}
	if tg.chatID != "test-chat" {
		t.Errorf("expected chat_id 'test-chat', got '%s'", tg.chatID)
	}
	if tg.apiBase != DefaultAPIBase {
		t.Errorf("expected default api base, got '%s'", tg.apiBase)
	}
}

func TestTelegram_Init_MissingToken(t *testing.T) {
	tg := &Telegram{}

	err := tg.Init(notifier.Config{Params: map[string]any{"chat_id": "test-chat"}})
	if err == nil {
		t.Error("expected error for missing bot_token")
	}
}

func TestTelegram_Init_MissingChatID(t *testing.T) {
	tg := &Telegram{}

	err := tg.Init(notifier.Config{Params: map[string]any{"bot_token": "test-token"}})
	if err == nil {
		t.Error("expected error for missing chat_id")
	}
}

func TestTelegram_Send(t *testing.T) {
	var receivedPayload map[string]any
	var receivedPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&receivedPayload)
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer server.Close()

	tg := New("test-token", "test-chat")
	tg.apiBase = server.URL

	quote := core.Quote{Symbol: "PLTR", Name: "Palantir", Price: 24.5, ChangePercent: 5.2, Trend: core.TrendUp, SignalStrength: 96}
	err := tg.Send(context.Background(), notifier.Message{
		Title: "🚀 AI Signal: PLTR",
		Body:  "Confidence 96%. Breakout detected.",
		Stock: &quote,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if receivedPath != "/bottest-token/sendMessage" {
		t.Errorf("unexpected path %s", receivedPath)
	}
	if receivedPayload["chat_id"] != "test-chat" {
		t.Errorf("expected chat_id test-chat, got %v", receivedPayload["chat_id"])
	}
	if receivedPayload["parse_mode"] != "Markdown" {
		t.Errorf("expected Markdown parse mode, got %v", receivedPayload["parse_mode"])
	}
	text, _ := receivedPayload["text"].(string)
	if !strings.Contains(text, "PLTR") {
		t.Error("sent text should contain symbol")
	}
}

func TestTelegram_Send_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "description": "Unauthorized"})
	}))
	defer server.Close()

	tg := New("bad-token", "chat")
	tg.apiBase = server.URL

	err := tg.Send(context.Background(), notifier.Message{Title: "TEST"})
	if err == nil {
		t.Fatal("expected error for API failure")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestFormatMessage(t *testing.T) {
	quote := core.Quote{Symbol: "NVDA", Name: "NVIDIA Corp", Price: 135.4, ChangePercent: 2.15, Trend: core.TrendUp, SignalStrength: 92}
	formatted := formatMessage(notifier.Message{
		Title:     "🚀 AI Signal: NVDA",
		Body:      "Breakout detected.",
		Stock:     &quote,
		CreatedAt: time.Date(2026, 10, 17, 10, 30, 0, 0, time.UTC),
	})

	for _, want := range []string{"*🚀 AI Signal: NVDA*", "Breakout detected.", "📈 *NVDA* NVIDIA Corp", "$135.40 (+2.15%)", "Signal: 92", "2026-10-17 10:30:00"} {
		if !strings.Contains(formatted, want) {
			t.Errorf("formatted message should contain %q, got:\n%s", want, formatted)
		}
	}
}

func TestFormatMessage_DownTrend(t *testing.T) {
	quote := core.Quote{Symbol: "MU", Price: 85.3, ChangePercent: -1.2, Trend: core.TrendDown}
	formatted := formatMessage(notifier.Message{Title: "x", Stock: &quote})

	if !strings.Contains(formatted, "📉") {
		t.Error("down trend should have 📉 emoji")
	}
	if !strings.Contains(formatted, "-1.20%") {
		t.Error("formatted message should contain negative change")
	}
}

func TestFormatMessage_TitleOnly(t *testing.T) {
	formatted := formatMessage(notifier.Message{Title: "AlphaPulse Active"})

	if formatted != "🔔 *AlphaPulse Active*" {
		t.Errorf("unexpected formatting %q", formatted)
	}
}
