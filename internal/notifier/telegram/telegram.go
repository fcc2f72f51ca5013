package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/newthinker/alphapulse/internal/core"
	"github.com/newthinker/alphapulse/internal/notifier"
)

// DefaultAPIBase is the Telegram Bot API endpoint
const DefaultAPIBase = "https://api.telegram.org"

// Telegram implements the Notifier interface for Telegram Bot API
type Telegram struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

// New creates a new Telegram notifier
func New(botToken, chatID string) *Telegram {
	return &Telegram{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  DefaultAPIBase,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (t *Telegram) Name() string {
	return "telegram"
}

func (t *Telegram) Init(cfg notifier.Config) error {
	if token, ok := cfg.Params["bot_token"].(string); ok {
		t.botToken = token
	}
	if chatID, ok := cfg.Params["chat_id"].(string); ok {
		t.chatID = chatID
	}
	if base, ok := cfg.Params["api_base"].(string); ok && base != "" {
		t.apiBase = base
	}

	if t.botToken == "" {
		return fmt.Errorf("telegram: bot_token is required")
	}
	if t.chatID == "" {
		return fmt.Errorf("telegram: chat_id is required")
	}
	if t.apiBase == "" {
		t.apiBase = DefaultAPIBase
	}
	if t.client == nil {
		t.client = &http.Client{Timeout: 30 * time.Second}
	}

	return nil
}

func (t *Telegram) Send(ctx context.Context, msg notifier.Message) error {
	return t.sendMessage(ctx, formatMessage(msg))
}

func formatMessage(msg notifier.Message) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🔔 *%s*\n", msg.Title))
	if msg.Body != "" {
		sb.WriteString(msg.Body)
		sb.WriteString("\n")
	}

	if q := msg.Stock; q != nil {
		trendEmoji := "📈"
		if q.Trend == core.TrendDown {
			trendEmoji = "📉"
		}
		sb.WriteString(fmt.Sprintf("\n%s *%s* %s\n", trendEmoji, q.Symbol, q.Name))
		sb.WriteString(fmt.Sprintf("💰 Price: $%.2f (%+.2f%%)\n", q.Price, q.ChangePercent))
		sb.WriteString(fmt.Sprintf("📊 Signal: %d\n", q.SignalStrength))
	}

	if !msg.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("⏰ Time: %s", msg.CreatedAt.Format("2006-01-02 15:04:05")))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func (t *Telegram) sendMessage(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)

	payload := map[string]any{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var result map[string]any
		json.NewDecoder(resp.Body).Decode(&result)
		return fmt.Errorf("telegram: API error (status %d): %v", resp.StatusCode, result)
	}

	return nil
}
