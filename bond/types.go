package bond

import (
	"log/slog"
	"sync"
	"time"

	"github.com/meenmo/quantlib/curve"
	"github.com/meenmo/quantlib/daycount"
)

// Cashflow is a single dated cash payment for a bond.
//
// Amounts are in currency units (BRL per bond), not price-per-100.
type Cashflow struct {
	Date      time.Time
	Coupon    float64
	Principal float64
}

func (c Cashflow) Amount() float64 {
	return c.Coupon + c.Principal
}

// Flow converts to the curve package's dated amount.
func (c Cashflow) Flow() curve.CashFlow {
	return curve.CashFlow{Date: c.Date, Amount: c.Amount()}
}

// Flows converts a schedule for curve fitting.
func Flows(cfs []Cashflow) []curve.CashFlow {
	out := make([]curve.CashFlow, len(cfs))
	for i, c := range cfs {
		out[i] = c.Flow()
	}
	return out
}

// Quote returns the bond as an NSS / bootstrap input.
func Quote(b Bond) curve.BondQuote {
	return curve.BondQuote{Price: b.PriceValue(), Flows: Flows(b.Cashflows())}
}

// Risk holds the yield sensitivities of a bond.
type Risk struct {
	Macaulay  float64
	Modified  float64
	Convexity float64
	DV01      float64
}

// Bond is the view shared by LTN, NTN-F and NTN-B used by the DI1 hedge.
type Bond interface {
	RefDate() time.Time
	PriceValue() float64
	Sensitivities() Risk
	Cashflows() []Cashflow
}

// Input describes a bond to price. Exactly one of Rate and Price is required
// for LTN and NTN-F; NTN-B takes two of Rate, Price and VNA. Supplying all of
// them runs a consistency check instead.
type Input struct {
	Expiry    time.Time
	Ref       time.Time
	Principal float64 // LTN and NTN-F face; defaults to 1000
	Coupon    float64 // annual coupon rate; defaults to 10% (NTN-F) or 6% (NTN-B)

	Rate  *float64
	Price *float64
	VNA   *float64

	Logger *slog.Logger
}

// Float returns a pointer to v, for optional Input fields.
func Float(v float64) *float64 { return &v }

var (
	anbimaOnce sync.Once
	anbimaDC   daycount.DayCount
)

// DayCount is BUS/252 on the ANBIMA calendar, used by every Brazilian instrument here.
func DayCount() daycount.DayCount {
	anbimaOnce.Do(func() {
		anbimaDC = daycount.MustNew("bus/252", "anbima")
	})
	return anbimaDC
}
