package daycount

import (
	"strings"

	"github.com/meenmo/quantlib/errs"
)

// Convention is a day-count convention from the closed set below.
type Convention int

const (
	NL365 Convention = iota + 1
	OneOne
	Bus30
	Bus252
	Bus1
	BusBus
	ActActISDA
	Act365
	Act365A
	Act365F
	Act364
	Act360
	Act365L
	ActActAFB
	ActActICMA
	Thirty360A
	Thirty360E
	Thirty360EPlus
	Thirty360EISDA
	Thirty360U
)

var labels = map[Convention]string{
	NL365:          "NL/365",
	OneOne:         "1/1",
	Bus30:          "BUS/30",
	Bus252:         "BUS/252",
	Bus1:           "BUS/1",
	BusBus:         "BUS/BUS",
	ActActISDA:     "ACT/ACT ISDA",
	Act365:         "ACT/365",
	Act365A:        "ACT/365A",
	Act365F:        "ACT/365F",
	Act364:         "ACT/364",
	Act360:         "ACT/360",
	Act365L:        "ACT/365L",
	ActActAFB:      "ACT/ACT AFB",
	ActActICMA:     "ACT/ACT ICMA",
	Thirty360A:     "30A/360",
	Thirty360E:     "30E/360",
	Thirty360EPlus: "30E+/360",
	Thirty360EISDA: "30E/360 ISDA",
	Thirty360U:     "30U/360",
}

var byLabel = func() map[string]Convention {
	m := make(map[string]Convention, len(labels))
	for c, l := range labels {
		m[l] = c
	}
	return m
}()

// String returns the canonical upper-case label, e.g. "ACT/ACT ISDA".
func (c Convention) String() string {
	if l, ok := labels[c]; ok {
		return l
	}
	return "UNKNOWN"
}

// IsBusiness reports whether days are counted on business days.
func (c Convention) IsBusiness() bool {
	switch c {
	case Bus30, Bus252, Bus1, BusBus:
		return true
	}
	return false
}

// Is30360 reports whether the convention is in the 30/360 family.
func (c Convention) Is30360() bool {
	switch c {
	case Thirty360A, Thirty360E, Thirty360EPlus, Thirty360EISDA, Thirty360U:
		return true
	}
	return false
}

// Conventions lists the closed set in declaration order.
func Conventions() []Convention {
	out := make([]Convention, 0, len(labels))
	for c := NL365; c <= Thirty360U; c++ {
		out = append(out, c)
	}
	return out
}

// MarshalText renders the canonical label.
func (c Convention) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts any label ParseConvention accepts.
func (c *Convention) UnmarshalText(b []byte) error {
	v, err := ParseConvention(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// MustParse is ParseConvention for labels known at compile time. It panics on error.
func MustParse(label string) Convention {
	c, err := ParseConvention(label)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseConvention maps a free-form label ("Actual/360", "English", "Bond Basis",
// "bd/252", ...) to a Convention. Unknown labels fail with errs.UnknownConvention.
func ParseConvention(label string) (Convention, error) {
	dc := strings.ToUpper(strings.TrimSpace(label))
	if c, ok := byLabel[dc]; ok {
		return c, nil
	}

	lower := strings.ToLower(dc)
	var (
		out string
		ok  bool
	)
	switch {
	case lower == "nl/365" || lower == "nl365" || lower == "act/365 no leap year":
		return NL365, nil
	case lower == "1/1" || lower == "one/one":
		return OneOne, nil
	case appearsBus(lower):
		out, ok = parseBus(dc)
	case appearsAct(lower):
		out, ok = parseAct(dc)
	case appearsXX360(lower):
		out, ok = parseXX360(dc)
	}
	if ok {
		return byLabel[out], nil
	}
	return 0, errs.New(errs.UnknownConvention, "daycount.ParseConvention", label, "cannot parse %q as a day count", label)
}

func appearsBus(dc string) bool {
	return strings.Contains(dc, "bu") || strings.Contains(dc, "252") || strings.Contains(dc, "bd")
}

func appearsAct(dc string) bool {
	return strings.Contains(dc, "act") || strings.Contains(dc, "english") || strings.Contains(dc, "french") ||
		strings.Contains(dc, "no leap year") || strings.Contains(dc, "exact") || strings.Contains(dc, "a/") ||
		(strings.Contains(dc, "isma") && strings.Contains(dc, "year")) ||
		(strings.Contains(dc, "isma") && strings.Contains(dc, "99"))
}

func appearsXX360(dc string) bool {
	return ((strings.Contains(dc, "30") || strings.Contains(dc, "28")) && strings.Contains(dc, "360")) ||
		strings.Contains(dc, "bond") || strings.Contains(dc, "muni") || strings.Contains(dc, "german") ||
		strings.Contains(dc, "act/360")
}

// parseBus normalises each side of "x/y", mapping BUSINESS, BD and BU to BUS.
func parseBus(dc string) (string, bool) {
	parts := strings.Split(dc, "/")
	if len(parts) != 2 {
		return "", false
	}
	for i, p := range parts {
		p = strings.TrimSpace(p)
		for _, alias := range []string{"BUSINESS DAYS", "BUSINESS", "BD", "BU"} {
			if p == "BUS" {
				break
			}
			p = strings.ReplaceAll(p, alias, "BUS")
		}
		parts[i] = p
	}
	out := parts[0] + "/" + parts[1]
	_, ok := byLabel[out]
	return out, ok
}

func parseAct(dc string) (string, bool) {
	dc = strings.ReplaceAll(dc, "ACTUAL", "ACT")
	dc = strings.ReplaceAll(dc, "A/", "ACT/")
	if _, ok := byLabel[dc]; ok {
		return dc, true
	}
	has := func(s string) bool { return strings.Contains(dc, s) }

	switch {
	case dc == "ACT/ACT":
		dc = "ACT/ACT ISDA"
	case dc == "ENGLISH" || (has("FIXED") && has("ACT/365")):
		dc = "ACT/365F"
	case dc == "FRENCH":
		dc = "ACT/360"
	case dc == "ACT/365NL":
		dc = "NL/365"
	case dc == "EXACT/EXACT":
		dc = "ACT/ACT AFB"
	case dc == "EXACT/360":
		dc = "ACT/360"
	case dc == "EXACT/365":
		dc = "ACT/365"
	case has("EXACT/365") && has("FIXE"):
		dc = "ACT/365F"
	case has("ACT/ACT") && has("FRENCH"):
		dc = "ACT/ACT AFB"
	case has("ACT/ACT") && (has("ISDA") || has("SWAP") || has("HISTORICAL")):
		dc = "ACT/ACT ISDA"
	case has("ACT/ACT") && (has("BOND") || has("ICMA") || has("ISMA")):
		dc = "ACT/ACT ICMA"
	case has("ISMA") && has("99"):
		dc = "ACT/ACT ICMA"
	case has("ACT/365") && has("NO LEAP YEAR"):
		dc = "NL/365"
	case (has("ACT/365") && has("LEAP YEAR")) || (has("YEAR") && has("ISMA")):
		dc = "ACT/365L"
	}
	_, ok := byLabel[dc]
	return dc, ok
}

func parseXX360(dc string) (string, bool) {
	dc = strings.ReplaceAll(dc, "ACTUAL", "ACT")
	if _, ok := byLabel[dc]; ok {
		return dc, true
	}
	has := func(s string) bool { return strings.Contains(dc, s) }

	switch {
	case dc == "BOND BASIS" || dc == "30/360":
		dc = "30A/360"
	case has("30/360") && has("SIA"):
		dc = "30A/360"
	case has("30/360") && has("ISDA"):
		dc = "30A/360"
	case dc == "30S/360" || (has("30S/360") && has("SPECIAL GERMAN")) || dc == "EUROBOND BASIS" ||
		dc == "EUROBOND" || dc == "SPECIAL GERMAN":
		dc = "30E/360"
	case has("30/360") && (has("ISMA") || has("EUROPEAN") || has("ICMA") || has("SPECIAL GERMAN")):
		dc = "30E/360"
	case dc == "GERMAN" || (has("30/360") && has("GERMAN")):
		dc = "30E/360 ISDA"
	case dc == "30US/360" || (has("30/360") && (has("US") || has("SIFMA") || has("PSA") || has("BMA"))):
		dc = "30U/360"
	case dc == "28/360":
		dc = "ACT/360"
	}
	_, ok := byLabel[dc]
	return dc, ok
}
