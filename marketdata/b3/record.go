// Package b3 reads the B3 daily derivatives bulletin: one record per
// contract maturity and trade date.
package b3

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/utils"
)

// Record is one bulletin line. Prices are in the quotation unit of the
// contract; DI1 quotes are rates in percent.
type Record struct {
	TimeStamp    time.Time
	Contract     string
	MaturityCode string

	OpenInterestOpen  int64
	OpenInterestClose int64
	NumberOfTrades    int64
	TradingVolume     int64
	FinancialVolume   float64

	PreviousSettlement float64
	IndexedSettlement  float64
	OpeningPrice       float64
	MinimumPrice       float64
	MaximumPrice       float64
	AveragePrice       float64
	LastPrice          float64
	SettlementPrice    float64
	LastBid            float64
	LastOffer          float64
}

// Code is the contract root followed by the maturity code, e.g. DI1F27.
func (r Record) Code() string {
	return r.Contract + r.MaturityCode
}

// Columns lists the bulletin fields in file order.
var Columns = []string{
	"time_stamp", "contract", "maturity_code",
	"open_interest_open", "open_interest_close", "number_of_trades", "trading_volume", "financial_volume",
	"previous_settlement", "indexed_settlement", "opening_price", "minimum_price", "maximum_price",
	"average_price", "last_price", "settlement_price", "last_bid", "last_offer",
}

var dateLayouts = []string{utils.DateLayout, "02/01/2006", "20060102"}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return utils.Truncate(t), nil
		}
	}
	return time.Time{}, errs.New(errs.Precondition, "b3.parseDate", s, "unrecognised date %q", s)
}

// parseNumber reads plain or Brazilian formatted numbers: "4.42", "4,42" and
// "1.234,56". Blank and "-" cells are zero.
func parseNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errs.Wrap(errs.Precondition, "b3.parseNumber", s, err)
	}
	return d, nil
}

// fromCells builds a record from cells indexed by column name.
func fromCells(get func(name string) string) (Record, error) {
	var r Record
	var err error
	if r.TimeStamp, err = parseDate(get("time_stamp")); err != nil {
		return r, err
	}
	r.Contract = strings.ToUpper(strings.TrimSpace(get("contract")))
	r.MaturityCode = strings.ToUpper(strings.TrimSpace(get("maturity_code")))
	if r.MaturityCode == "" {
		return r, errs.New(errs.Precondition, "b3.fromCells", nil, "missing maturity code")
	}

	ints := []struct {
		name string
		dst  *int64
	}{
		{"open_interest_open", &r.OpenInterestOpen},
		{"open_interest_close", &r.OpenInterestClose},
		{"number_of_trades", &r.NumberOfTrades},
		{"trading_volume", &r.TradingVolume},
	}
	for _, f := range ints {
		d, err := parseNumber(get(f.name))
		if err != nil {
			return r, err
		}
		*f.dst = d.IntPart()
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"financial_volume", &r.FinancialVolume},
		{"previous_settlement", &r.PreviousSettlement},
		{"indexed_settlement", &r.IndexedSettlement},
		{"opening_price", &r.OpeningPrice},
		{"minimum_price", &r.MinimumPrice},
		{"maximum_price", &r.MaximumPrice},
		{"average_price", &r.AveragePrice},
		{"last_price", &r.LastPrice},
		{"settlement_price", &r.SettlementPrice},
		{"last_bid", &r.LastBid},
		{"last_offer", &r.LastOffer},
	}
	for _, f := range floats {
		d, err := parseNumber(get(f.name))
		if err != nil {
			return r, err
		}
		*f.dst = d.InexactFloat64()
	}
	return r, nil
}
