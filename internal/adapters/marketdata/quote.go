package marketdata

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is an ephemeral price snapshot for one symbol. Quotes are never
// cached across turns; freshness wins over consistency.
type Quote struct {
	Symbol        string
	Name          string
	Price         decimal.Decimal
	PreviousClose decimal.Decimal
	ChangePct     decimal.Decimal // day change vs previous close, percent
	Currency      string
	MarketState   string
	MarketCap     float64
	YearHigh      float64
	YearLow       float64
	AsOf          time.Time
}
