package b3

import (
	"time"

	"github.com/meenmo/quantlib/bond"
	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/utils"
)

// QuoteFeed supplies DI1 last prices, maturity code -> rate in percent.
type QuoteFeed interface {
	QuotesOn(day time.Time) (map[string]float64, bool)
}

// MapFeed is an in-memory QuoteFeed over parsed bulletin records.
type MapFeed struct {
	quotes map[string]map[string]float64
	days   []time.Time
}

// NewMapFeed indexes the DI1 records by trade date.
func NewMapFeed(records []Record) *MapFeed {
	m := &MapFeed{quotes: make(map[string]map[string]float64)}
	for _, r := range records {
		if !isDI1(r) {
			continue
		}
		key := r.TimeStamp.Format(utils.DateLayout)
		day, ok := m.quotes[key]
		if !ok {
			day = make(map[string]float64)
			m.quotes[key] = day
			m.days = append(m.days, r.TimeStamp)
		}
		day[r.MaturityCode] = r.LastPrice
	}
	utils.SortDates(m.days)
	return m
}

func (m *MapFeed) QuotesOn(day time.Time) (map[string]float64, bool) {
	q, ok := m.quotes[day.Format(utils.DateLayout)]
	return q, ok
}

// Days lists the trade dates held, ascending.
func (m *MapFeed) Days() []time.Time {
	return append([]time.Time(nil), m.days...)
}

// DI1Quotes keeps the DI1 records of day as maturity code -> last price.
func DI1Quotes(records []Record, day time.Time) map[string]float64 {
	day = utils.Truncate(day)
	out := make(map[string]float64)
	for _, r := range records {
		if isDI1(r) && r.TimeStamp.Equal(day) {
			out[r.MaturityCode] = r.LastPrice
		}
	}
	return out
}

// DI1Curve builds the DI1 term structure of day from feed.
func DI1Curve(feed QuoteFeed, day time.Time) (*bond.DI1Curve, error) {
	q, ok := feed.QuotesOn(day)
	if !ok {
		return nil, errs.New(errs.OutOfRange, "b3.DI1Curve", day, "no DI1 quotes on %s", day.Format(utils.DateLayout))
	}
	return bond.NewDI1Curve(day, q)
}

// isDI1 accepts DI1 rows and rows of single contract files without a
// contract column.
func isDI1(r Record) bool {
	return r.Contract == "" || r.Contract == "DI1"
}
