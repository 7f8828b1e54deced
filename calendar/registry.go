package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/meenmo/quantlib/config"
	"github.com/meenmo/quantlib/errs"
)

// StandardName is the calendar with no holidays.
const StandardName = "cdr_standard"

// Canonical calendar names.
const (
	Anbima      = "cdr_anbima"
	USTrading   = "cdr_us_trading"
	LiborBase   = "cdr_libor_base"
	LiborEurON  = "cdr_libor_eur_on"
	LiborUsdON  = "cdr_libor_usd_on"
	aliasPrefix = "cdr_"
)

var registry = map[string][]Rule{
	Anbima:     anbimaRules,
	USTrading:  usTradingRules,
	LiborBase:  liborBaseRules,
	LiborEurON: liborEurONRules,
	LiborUsdON: liborUsdONRules,
}

// aliases resolve to another registry entry.
var aliases = map[string]string{
	"cdr_#a":           USTrading,
	"cdr_libor_usd":    LiborBase,
	"cdr_libor_eur":    LiborBase,
	"cdr_libor_gbp":    LiborBase,
	"cdr_libor_gbp_on": LiborBase,
	"cdr_libor_chf":    LiborBase,
	"cdr_libor_chf_on": LiborBase,
	"cdr_libor_jpy":    LiborBase,
	"cdr_libor_jpy_on": LiborBase,
}

// resolved calendars, keyed by canonical name and year range.
var resolved = cache.New(cache.NoExpiration, 0)

// ModifyName normalises a calendar name: lowercase with the cdr_ prefix.
// Empty and "standard" map to StandardName; "#a" maps to us_trading.
func ModifyName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" || n == "standard" || n == StandardName {
		return StandardName
	}
	if !strings.HasPrefix(n, aliasPrefix) {
		n = aliasPrefix + n
	}
	if n == "cdr_#a" {
		n = USTrading
	}
	return n
}

// Names lists the registered canonical names and aliases, sorted.
func Names() []string {
	out := []string{StandardName}
	for k := range registry {
		out = append(out, k)
	}
	for k := range aliases {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Holidays returns the sorted holiday dates of a named calendar over the
// configured year range.
func Holidays(name string) ([]time.Time, error) {
	c, err := Get(name)
	if err != nil {
		return nil, err
	}
	return c.Holidays(), nil
}

// Get resolves a calendar by name. Results are cached for the process lifetime.
func Get(name string) (*Calendar, error) {
	cfg := config.GetConfig().Calendar
	return GetRange(name, cfg.YearStart, cfg.YearEnd)
}

// GetRange resolves a calendar with rules evaluated over [yearStart-1, yearEnd].
func GetRange(name string, yearStart, yearEnd int) (*Calendar, error) {
	canon := ModifyName(name)
	if target, ok := aliases[canon]; ok {
		canon = target
	}
	key := fmt.Sprintf("%s:%d:%d", canon, yearStart, yearEnd)
	if c, ok := resolved.Get(key); ok {
		return c.(*Calendar), nil
	}

	var c *Calendar
	if canon == StandardName {
		c = New(StandardName, nil, DefaultWeekmask)
	} else {
		rules, ok := registry[canon]
		if !ok {
			return nil, errs.New(errs.UnknownCalendar, "calendar.Get", name, "calendar %q not found", canon)
		}
		days, err := EvaluateRules(rules, yearStart-1, yearEnd)
		if err != nil {
			return nil, fmt.Errorf("calendar.Get: %s: %w", canon, err)
		}
		c = New(canon, days, DefaultWeekmask)
	}
	resolved.Set(key, c, cache.NoExpiration)
	return c, nil
}

// MustGet is Get for registered names known at compile time. It panics on error.
func MustGet(name string) *Calendar {
	c, err := Get(name)
	if err != nil {
		panic(err)
	}
	return c
}
