package bond

import (
	"math"
	"time"

	"github.com/meenmo/quantlib/calendar"
	"github.com/meenmo/quantlib/daycount"
	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/utils"
)

// VNABaseIndex is the IPCA index level at which the NTN-B VNA equals 1000 (July 2000).
const VNABaseIndex = 1614.62

// LastAnniversary is the most recent 15th of a month on or before d.
func LastAnniversary(d time.Time) time.Time {
	if d.Day() >= 15 {
		return utils.Date(d.Year(), d.Month(), 15)
	}
	return utils.AddMonth(utils.Date(d.Year(), d.Month(), 15), -1)
}

// ProjectVNA accrues the NTN-B VNA from the last published IPCA index with a
// monthly projection:
//
//	1000 · (index/1614.62) · (1+proj)^(du since last 15th / du between 15ths)
//
// Business days are counted on cal, ANBIMA when nil. Choosing between the
// released IPCA and the projection is up to the caller.
func ProjectVNA(ref time.Time, lastIndex, projection float64, cal *calendar.Calendar) (float64, error) {
	if lastIndex <= 0 {
		return math.NaN(), errs.New(errs.Precondition, "bond.ProjectVNA", lastIndex, "index must be positive")
	}
	dc := DayCount()
	if cal != nil {
		dc = daycount.New(daycount.Bus252, cal)
	}
	last := LastAnniversary(ref)
	next := utils.AddMonth(last, 1)
	since := dc.Days(last, ref)
	between := dc.Days(last, next)
	if between <= 0 {
		return math.NaN(), errs.New(errs.Precondition, "bond.ProjectVNA", last, "no business days between %s and %s",
			last.Format(time.DateOnly), next.Format(time.DateOnly))
	}
	return 1000 * (lastIndex / VNABaseIndex) * math.Pow(1+projection, float64(since)/float64(between)), nil
}
