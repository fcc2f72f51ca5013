package core

import "time"

// Trend represents the direction of a price move
type Trend string

const (
	TrendUp      Trend = "UP"
	TrendDown    Trend = "DOWN"
	TrendNeutral Trend = "NEUTRAL"
)

// TrendOf derives the trend from an absolute change. Zero counts as up.
func TrendOf(change float64) Trend {
	if change >= 0 {
		return TrendUp
	}
	return TrendDown
}

// Quote is a point-in-time view of one stock as shown on the dashboard
type Quote struct {
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	Change         float64 `json:"change"`
	ChangePercent  float64 `json:"changePercent"`
	Trend          Trend   `json:"trend"`
	Sector         string  `json:"sector"`
	IsHot          bool    `json:"isHot"`
	SignalStrength int     `json:"signalStrength"`
}

// MaxSignalStrength is the upper bound of the synthetic signal score
const MaxSignalStrength = 99

// IsValid checks if the quote has required fields
func (q Quote) IsValid() bool {
	return q.Symbol != "" && q.SignalStrength >= 0 && q.SignalStrength <= MaxSignalStrength
}

// ChartPoint is one sample of a price series
type ChartPoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// Sentiment classifies a news item
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
)

// NewsItem is a headline attached to a symbol
type NewsItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Sentiment Sentiment `json:"sentiment"`
	Time      string    `json:"time"`
	IsSocial  bool      `json:"isSocial"`
	Author    string    `json:"author,omitempty"`
}

// Action represents a trading recommendation
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Valid reports whether the action is one of BUY, SELL or HOLD.
func (a Action) Valid() bool {
	switch a {
	case ActionBuy, ActionSell, ActionHold:
		return true
	}
	return false
}

// Insight is the structured trade thesis for a stock
type Insight struct {
	ConfidenceScore         float64  `json:"confidenceScore"`
	Action                  Action   `json:"action"`
	Summary                 string   `json:"summary"`
	KeyDrivers              []string `json:"keyDrivers"`
	RiskFactors             []string `json:"riskFactors"`
	SocialSentimentAnalysis string   `json:"socialSentimentAnalysis"`
	BuyZone                 string   `json:"buyZone"`
	SellZone                string   `json:"sellZone"`
}

// SearchHit is a ticker/name pair returned by symbol search
type SearchHit struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

// MarketData holds the two dashboard lists
type MarketData struct {
	Watchlist     []Quote `json:"watchlist"`
	Opportunities []Quote `json:"opportunities"`
}

// Notification is an opportunity alert shown in-app and optionally pushed
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Stock     Quote     `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
}
