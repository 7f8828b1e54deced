package daycount_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/quantlib/daycount"
	"github.com/meenmo/quantlib/errs"
)

func TestParseConventionAliases(t *testing.T) {
	t.Parallel()

	cases := map[string]daycount.Convention{
		"ACT/360":                  daycount.Act360,
		"actual/360":               daycount.Act360,
		"A/360":                    daycount.Act360,
		"French":                   daycount.Act360,
		"Exact/360":                daycount.Act360,
		"English":                  daycount.Act365F,
		"Actual/365 Fixed":         daycount.Act365F,
		"act/act":                  daycount.ActActISDA,
		"Actual/Actual ISDA":       daycount.ActActISDA,
		"ACT/ACT HISTORICAL":       daycount.ActActISDA,
		"Actual/Actual ICMA":       daycount.ActActICMA,
		"ISMA-99":                  daycount.ActActICMA,
		"Actual/Actual French":     daycount.ActActAFB,
		"Exact/Exact":              daycount.ActActAFB,
		"act/365 no leap year":     daycount.NL365,
		"NL365":                    daycount.NL365,
		"ISMA-Year":                daycount.Act365L,
		"one/one":                  daycount.OneOne,
		"bd/252":                   daycount.Bus252,
		"Business Days/252":        daycount.Bus252,
		"bus/bus":                  daycount.BusBus,
		"30/360":                   daycount.Thirty360A,
		"Bond Basis":               daycount.Thirty360A,
		"30/360 US":                daycount.Thirty360U,
		"30US/360":                 daycount.Thirty360U,
		"30/360 ICMA":              daycount.Thirty360E,
		"Eurobond Basis":           daycount.Thirty360E,
		"30E+/360":                 daycount.Thirty360EPlus,
		"German":                   daycount.Thirty360EISDA,
		"30e/360 isda":             daycount.Thirty360EISDA,
		"  ACT/365L ":              daycount.Act365L,
		"28/360":                   daycount.Act360,
		"30/360 SIA":               daycount.Thirty360A,
		"Exact/365 Fixe":           daycount.Act365F,
	}
	for in, want := range cases {
		got, err := daycount.ParseConvention(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseConventionUnknown(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "banana", "12/7", "bus/13"} {
		_, err := daycount.ParseConvention(in)
		require.Error(t, err, in)
		assert.ErrorIs(t, err, errs.ErrUnknownConvention, in)
	}
}

func TestConventionTextRoundTrip(t *testing.T) {
	t.Parallel()

	for _, c := range daycount.Conventions() {
		b, err := c.MarshalText()
		require.NoError(t, err)
		var back daycount.Convention
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, c, back)
	}
	assert.Len(t, daycount.Conventions(), 20)
}
