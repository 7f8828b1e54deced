package tracker

import (
	"math"
	"strings"
	"time"

	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/series"
	"github.com/meenmo/quantlib/utils"
)

// Dividend is one corporate action from a dividend history.
type Dividend struct {
	Declared time.Time
	ExDate   time.Time
	Record   time.Time
	Payable  time.Time
	Amount   float64
	// Frequency and Type are vendor labels, e.g. "Quarter" and "Regular Cash".
	Frequency string
	Type      string
}

// nonCashEvents change the share count and need their own adjustment.
var nonCashEvents = map[string]bool{
	"quote lot change": true,
	"stock split":      true,
	"bonus":            true,
}

// CashDividends drops splits, bonus issues and quote lot changes.
func CashDividends(divs []Dividend) []Dividend {
	var out []Dividend
	for _, d := range divs {
		if nonCashEvents[strings.ToLower(strings.TrimSpace(d.Type))] {
			continue
		}
		out = append(out, d)
	}
	return out
}

// EquityInput describes a single stock with dividends reinvested.
type EquityInput struct {
	// Symbol is the exchange symbol, e.g. "PETR4".
	Symbol    string
	Country   string
	Currency  string
	Price     *series.Series
	Dividends []Dividend
}

// Equity reinvests every cash dividend in the stock at the ex-date price:
// Δq = q·dividend/price. The index is q·price scaled to start at 100 on the
// first priced date; dividends going ex before it are ignored.
func Equity(in EquityInput) (*Result, error) {
	const op = "tracker.Equity"
	if in.Price.Len() == 0 {
		return nil, errs.New(errs.Precondition, op, in.Symbol, "price series is required")
	}

	perDate := map[time.Time]float64{}
	for _, d := range CashDividends(in.Dividends) {
		if math.IsNaN(d.Amount) || d.ExDate.IsZero() {
			continue
		}
		perDate[utils.Truncate(d.ExDate)] += d.Amount
	}
	var dates []time.Time
	seen := map[time.Time]bool{}
	for _, d := range in.Price.Dates {
		dates = append(dates, d)
		seen[d] = true
	}
	for d := range perDate {
		if !seen[d] {
			dates = append(dates, d)
		}
	}
	utils.SortDates(dates)
	prices := in.Price.Reindex(dates).FFill()

	i0 := prices.FirstValid()
	if i0 < 0 {
		return nil, errs.New(errs.Precondition, op, in.Symbol, "no valid prices")
	}
	res := &Result{Description: Description{
		FhTicker:       EquityTicker(in.Country, in.Symbol),
		AssetClass:     "equity",
		Type:           "stock",
		ExchangeSymbol: strings.ToUpper(in.Symbol),
		Currency:       strings.ToUpper(in.Currency),
		Country:        strings.ToUpper(in.Country),
		RollMethod:     "dividends reinvested on ex-date",
	}}

	q := StartLevel / prices.Values[i0]
	for i := i0; i < len(dates); i++ {
		d, p := dates[i], prices.Values[i]
		var pnl float64
		roll := i == i0
		if i > i0 {
			pnl = legPnL(q, p, prices.Values[i-1])
			// The ex-date close excludes the dividend; the cash buys more shares.
			if div, ok := perDate[d]; ok {
				pnl += q * div
				q += q * div / p
				roll = true
			}
		}
		res.Days = append(res.Days, Day{
			Date:  d,
			Legs:  []Leg{{Contract: strings.ToUpper(in.Symbol), Weight: 1, Holdings: q, Price: p}},
			PnL:   pnl,
			Index: q * p,
			Roll:  roll,
		})
	}
	return res, nil
}
