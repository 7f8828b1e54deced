package tracker

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/meenmo/quantlib/series"
	"github.com/meenmo/quantlib/utils"
)

// Row is one (time_stamp, fh_ticker, value) record of the long tracker table.
type Row struct {
	TimeStamp time.Time
	FhTicker  string
	Value     float64
}

// Melt turns an index series into long rows, dropping missing values.
func Melt(ticker string, s *series.Series) []Row {
	rows := make([]Row, 0, s.Len())
	for i, d := range s.Dates {
		v := s.Values[i]
		if math.IsNaN(v) {
			continue
		}
		rows = append(rows, Row{TimeStamp: d, FhTicker: ticker, Value: v})
	}
	return rows
}

// Melt returns the index as long rows under its fh_ticker.
func (r *Result) Melt() []Row {
	return Melt(r.Description.FhTicker, r.Index())
}

// Pivot is the inverse of Melt: one column per ticker, in first seen order.
func Pivot(rows []Row) *series.Frame {
	var cols []string
	colPos := map[string]int{}
	byDate := map[time.Time]bool{}
	var dates []time.Time
	for _, r := range rows {
		if _, ok := colPos[r.FhTicker]; !ok {
			colPos[r.FhTicker] = len(cols)
			cols = append(cols, r.FhTicker)
		}
		if d := utils.Truncate(r.TimeStamp); !byDate[d] {
			byDate[d] = true
			dates = append(dates, d)
		}
	}
	utils.SortDates(dates)
	f := series.NewFrame(dates, cols)
	for _, r := range rows {
		i, _ := f.Index(r.TimeStamp)
		f.Data[i][colPos[r.FhTicker]] = r.Value
	}
	return f
}

func ticker(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, " ")
}

// CommodityTicker is "comm <country> <root>", e.g. "comm us cl".
func CommodityTicker(country, root string) string { return ticker("comm", country, root) }

// FXTicker is "fx <country> <ccy>", e.g. "fx br brl".
func FXTicker(ccy string) string {
	return ticker("fx", currencyCountry[strings.ToUpper(ccy)], ccy)
}

// IRSTicker is "irs <country> <ccy> <tenor>y", e.g. "irs us usd 10y".
func IRSTicker(country, ccy string, tenor int) string {
	return ticker("irs", country, ccy, fmt.Sprintf("%dy", tenor))
}

// BondFutureTicker is "bondfut <country> <root>", e.g. "bondfut us ty".
func BondFutureTicker(country, root string) string { return ticker("bondfut", country, root) }

// EquityTicker is "eq <country> <symbol>", e.g. "eq br petr4".
func EquityTicker(country, symbol string) string { return ticker("eq", country, symbol) }

// GovBondTicker is "govbond <country> <name> <yyyy-mm-dd>".
func GovBondTicker(country, name string, expiry time.Time) string {
	return ticker("govbond", country, name, expiry.Format(time.DateOnly))
}
