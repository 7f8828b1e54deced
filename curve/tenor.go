package curve

import (
	"strconv"
	"strings"

	"github.com/meenmo/quantlib/errs"
)

// TenorKind picks the day basis a tenor label is converted on.
type TenorKind int

const (
	BusinessDays TenorKind = iota // D=1, W=5, M=21, Q=63, Y=252
	CalendarDays                  // D=1, W=7, M=30, Q=90, Y=360
)

// Base is the year length matching the kind.
func (k TenorKind) Base() float64 {
	if k == CalendarDays {
		return 360
	}
	return 252
}

var tenorUnits = map[byte][2]int{
	'D': {1, 1},
	'W': {5, 7},
	'M': {21, 30},
	'Q': {63, 90},
	'Y': {252, 360},
}

// TenorToDays converts tenor strings like "1W", "3M", "10Y" to days on kind's basis.
func TenorToDays(tenor string, kind TenorKind) (int, error) {
	tenor = strings.TrimSpace(strings.ToUpper(tenor))
	if len(tenor) < 2 {
		return 0, errs.New(errs.Precondition, "curve.TenorToDays", tenor, "tenor %q is too short", tenor)
	}
	unit, ok := tenorUnits[tenor[len(tenor)-1]]
	if !ok {
		return 0, errs.New(errs.Precondition, "curve.TenorToDays", tenor, "unknown tenor unit in %q", tenor)
	}
	n, err := strconv.Atoi(tenor[:len(tenor)-1])
	if err != nil || n < 0 {
		return 0, errs.New(errs.Precondition, "curve.TenorToDays", tenor, "bad tenor count in %q", tenor)
	}
	return n * unit[kind], nil
}

func errUnknownMethod(m Method) error {
	return errs.New(errs.Precondition, "curve", int(m), "unknown interpolation method %d", int(m))
}
