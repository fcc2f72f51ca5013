package market

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/alphapulse/internal/collector"
	"github.com/newthinker/alphapulse/internal/core"
)

const (
	chartWindowDays  = 4
	mockChartPoints  = 50
	mockChartSpacing = 15 * time.Minute

	// hourLabelLayout renders like "1/2, 3 PM".
	hourLabelLayout = "1/2, 3 PM"
	// minuteLabelLayout renders like "15:04".
	minuteLabelLayout = "15:04"
)

// ChartClient loads intraday price series for the detail view.
type ChartClient struct {
	base
}

// NewChartClient creates a chart client. Pass a nil provider for mock mode.
func NewChartClient(provider collector.Provider, logger *zap.Logger, opts ...Option) *ChartClient {
	return &ChartClient{base: newBase(provider, logger, opts)}
}

// FetchChartData returns hourly closes for the trailing four days, or a
// synthetic series ending at referencePrice when live data is unavailable.
func (c *ChartClient) FetchChartData(ctx context.Context, symbol string, referencePrice float64) []core.ChartPoint {
	if !c.Live() {
		c.recorder.RecordFallback("chart")
		return c.Synthesize(referencePrice)
	}

	to := c.clock.Now()
	from := to.AddDate(0, 0, -chartWindowDays)
	bars, err := c.provider.HourlyBars(ctx, symbol, from, to)
	if err != nil {
		c.logger.Warn("chart fetch failed, using synthetic series", zap.String("symbol", symbol), zap.Error(err))
		c.recorder.RecordFallback("chart")
		return c.Synthesize(referencePrice)
	}
	if len(bars) == 0 {
		c.recorder.RecordFallback("chart")
		return c.Synthesize(referencePrice)
	}

	loc := to.Location()
	points := make([]core.ChartPoint, 0, len(bars))
	for _, bar := range bars {
		points = append(points, core.ChartPoint{
			Time:  bar.Time().In(loc).Format(hourLabelLayout),
			Value: bar.Close,
		})
	}
	return points
}

// Synthesize builds a 50-point random walk starting at 90% of referencePrice,
// spaced 15 minutes apart up to now, whose last value is referencePrice.
func (c *ChartClient) Synthesize(referencePrice float64) []core.ChartPoint {
	now := c.clock.Now()
	price := referencePrice * 0.9
	points := make([]core.ChartPoint, mockChartPoints)
	for i := range points {
		at := now.Add(-time.Duration(mockChartPoints-i) * mockChartSpacing)
		price += (c.rand() - 0.45) * (referencePrice * 0.02)
		points[i] = core.ChartPoint{
			Time:  at.Format(minuteLabelLayout),
			Value: math.Round(price*100) / 100,
		}
	}
	points[len(points)-1].Value = referencePrice
	return points
}
