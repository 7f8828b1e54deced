package tracker

import (
	"fmt"
	"strings"
	"time"

	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/utils"
)

// RollSchedule holds, for each calendar month, the contract month to hold.
// A token is a month letter, followed by "+" when the contract matures the
// following year: ["H", "H", "K", ..., "F+", "F+"].
type RollSchedule [12]string

// ParseRollSchedule validates a 12 token schedule.
func ParseRollSchedule(tokens []string) (RollSchedule, error) {
	var s RollSchedule
	if len(tokens) != 12 {
		return s, errs.New(errs.Precondition, "tracker.ParseRollSchedule", len(tokens), "roll schedule needs 12 tokens, got %d", len(tokens))
	}
	for i, tok := range tokens {
		tok = strings.ToUpper(strings.TrimSpace(tok))
		if _, _, err := parseToken(tok); err != nil {
			return s, errs.Wrap(errs.Precondition, "tracker.ParseRollSchedule", tokens[i], err)
		}
		s[i] = tok
	}
	return s, nil
}

func parseToken(tok string) (time.Month, bool, error) {
	next := strings.HasSuffix(tok, "+")
	letter := strings.TrimSuffix(tok, "+")
	if len(letter) != 1 {
		return 0, false, fmt.Errorf("bad roll token %q", tok)
	}
	m, ok := utils.FuturesMonth(letter[0])
	if !ok {
		return 0, false, fmt.Errorf("unknown month letter in %q", tok)
	}
	return m, next, nil
}

// Target is the contract month and year held during the month of d.
func (s RollSchedule) Target(d time.Time) (time.Month, int) {
	m, next, _ := parseToken(s[d.Month()-1])
	year := d.Year()
	if next {
		year++
	}
	return m, year
}

// String joins the tokens with spaces, the form stored as the roll method.
func (s RollSchedule) String() string {
	return strings.Join(s[:], " ")
}

// ContractCode formats root + month letter + two digit year, e.g. "CLH04".
func ContractCode(root string, m time.Month, year int) string {
	return fmt.Sprintf("%s%c%02d", strings.ToUpper(strings.TrimSpace(root)), utils.FuturesLetter(m), year%100)
}

// shortContractCode uses a one digit year, as some vendors do for live contracts.
func shortContractCode(root string, m time.Month, year int) string {
	return fmt.Sprintf("%s%c%d", strings.ToUpper(strings.TrimSpace(root)), utils.FuturesLetter(m), year%10)
}

// Index names the built-in schedule tables.
type Index string

const (
	BCOM Index = "BCOM"
	GSCI Index = "GSCI"
)

// DefaultSchedule returns the published schedule of root in an index family.
func DefaultSchedule(family Index, root string) (RollSchedule, error) {
	var table map[string][]string
	switch Index(strings.ToUpper(string(family))) {
	case BCOM:
		table = bcomSchedules
	case GSCI:
		table = gsciSchedules
	default:
		return RollSchedule{}, errs.New(errs.Precondition, "tracker.DefaultSchedule", family, "roll schedule family %q not supported", family)
	}
	tokens, ok := table[strings.ToUpper(strings.TrimSpace(root))]
	if !ok {
		return RollSchedule{}, errs.New(errs.Precondition, "tracker.DefaultSchedule", root, "%s does not support %q", family, root)
	}
	return ParseRollSchedule(tokens)
}

// Sector returns the commodity sector of root, or "" when unknown.
func Sector(root string) string {
	return sectors[strings.ToUpper(strings.TrimSpace(root))]
}

// Roll schedules of the Bloomberg Commodity Index.
var bcomSchedules = map[string][]string{
	"C":  {"H", "H", "K", "K", "N", "N", "U", "U", "Z", "Z", "Z", "H+"},
	"S":  {"H", "H", "K", "K", "N", "N", "X", "X", "X", "X", "F+", "F+"},
	"SM": {"H", "H", "K", "K", "N", "N", "Z", "Z", "Z", "Z", "F+", "F+"},
	"BO": {"H", "H", "K", "K", "N", "N", "Z", "Z", "Z", "Z", "F+", "F+"},
	"W":  {"H", "H", "K", "K", "N", "N", "U", "U", "Z", "Z", "Z", "H+"},
	"KW": {"H", "H", "K", "K", "N", "N", "U", "U", "Z", "Z", "Z", "H+"},
	"CC": {"H", "H", "K", "K", "N", "N", "U", "U", "Z", "Z", "Z", "H+"},
	"CT": {"H", "H", "K", "K", "N", "N", "Z", "Z", "Z", "Z", "Z", "H+"},
	"KC": {"H", "H", "K", "K", "N", "N", "U", "U", "Z", "Z", "Z", "H+"},
	"LC": {"G", "J", "J", "M", "M", "Q", "Q", "V", "V", "Z", "Z", "G+"},
	"LH": {"G", "J", "J", "M", "M", "N", "Q", "V", "V", "Z", "Z", "G+"},
	"SB": {"H", "H", "K", "K", "N", "N", "V", "V", "V", "H+", "H+", "H+"},
	"CL": {"H", "H", "K", "K", "N", "N", "U", "U", "X", "X", "F+", "F+"},
	"CO": {"H", "K", "K", "N", "N", "U", "U", "X", "X", "F+", "F+", "H+"},
	"HO": {"H", "H", "K", "K", "N", "N", "U", "U", "X", "X", "F+", "F+"},
	"QS": {"H", "H", "K", "K", "N", "N", "U", "U", "X", "X", "F+", "F+"},
	"XB": {"H", "H", "K", "K", "N", "N", "U", "U", "X", "X", "F+", "F+"},
	"NG": {"H", "H", "K", "K", "N", "N", "U", "U", "X", "X", "F+", "F+"},
	"HG": {"H", "H", "K", "K", "N", "N", "U", "U", "Z", "Z", "Z", "H+"},
	"LN": {"H", "H", "K", "K", "N", "N", "U", "U", "X", "X", "F+", "F+"},
	"LX": {"H", "H", "K", "K", "N", "N", "U", "U", "X", "X", "F+", "F+"},
	"LA": {"H", "H", "K", "K", "N", "N", "U", "U", "X", "X", "F+", "F+"},
	"GC": {"G", "J", "J", "M", "M", "Q", "Q", "Z", "Z", "Z", "Z", "G+"},
	"SI": {"H", "H", "K", "K", "N", "N", "U", "U", "Z", "Z", "Z", "H+"},
}

// Roll schedules of the S&P GSCI.
var gsciSchedules = map[string][]string{
	"C":  {"H", "H", "K", "K", "N", "N", "U", "U", "Z", "Z", "Z", "H+"},
	"S":  {"H", "H", "K", "K", "N", "N", "X", "X", "X", "X", "F+", "F+"},
	"W":  {"H", "H", "K", "K", "N", "N", "U", "U", "Z", "Z", "Z", "H+"},
	"KW": {"H", "H", "K", "K", "N", "N", "U", "U", "Z", "Z", "Z", "H+"},
	"SB": {"H", "H", "K", "K", "N", "N", "V", "V", "V", "H+", "H+", "H+"},
	"CC": {"H", "H", "K", "K", "N", "N", "U", "U", "Z", "Z", "Z", "H+"},
	"CT": {"H", "H", "K", "K", "N", "N", "Z", "Z", "Z", "Z", "Z", "H+"},
	"KC": {"H", "H", "K", "K", "N", "N", "U", "U", "Z", "Z", "Z", "H+"},
	"OJ": {"H", "H", "K", "K", "N", "N", "U", "U", "X", "X", "F+", "F+"},
	"FC": {"H", "H", "K", "K", "Q", "Q", "Q", "V", "V", "F+", "F+", "F+"},
	"LC": {"G", "J", "J", "M", "M", "Q", "Q", "V", "V", "Z", "Z", "G+"},
	"LH": {"G", "J", "J", "M", "M", "N", "Q", "V", "V", "Z", "Z", "G+"},
	"CL": {"H", "H", "K", "K", "N", "N", "U", "U", "X", "X", "F+", "F+"},
	"CO": {"H", "K", "K", "N", "N", "U", "U", "X", "X", "F+", "F+", "H+"},
	"HO": {"H", "H", "K", "K", "N", "N", "U", "U", "X", "X", "F+", "F+"},
	"QS": {"H", "H", "K", "K", "N", "N", "U", "U", "X", "X", "F+", "F+"},
	"XB": {"H", "H", "K", "K", "N", "N", "U", "U", "X", "X", "F+", "F+"},
	"NG": {"H", "H", "K", "K", "N", "N", "U", "U", "X", "X", "F+", "F+"},
	"LX": {"H", "H", "K", "K", "N", "N", "U", "U", "X", "X", "F+", "F+"},
	"LL": {"H", "H", "K", "K", "N", "N", "U", "U", "X", "X", "F+", "F+"},
	"LN": {"H", "H", "K", "K", "N", "N", "U", "U", "X", "X", "F+", "F+"},
	"LT": {"H", "H", "K", "K", "N", "N", "U", "U", "X", "X", "F+", "F+"},
	"LP": {"H", "H", "K", "K", "N", "N", "U", "U", "X", "X", "F+", "F+"},
	"LA": {"H", "H", "K", "K", "N", "N", "U", "U", "X", "X", "F+", "F+"},
	"GC": {"G", "J", "J", "M", "M", "Q", "Q", "Z", "Z", "Z", "Z", "G+"},
	"SI": {"H", "H", "K", "K", "N", "N", "U", "U", "Z", "Z", "Z", "H+"},
	"PL": {"J", "J", "J", "N", "N", "N", "V", "V", "V", "F+", "F+", "F+"},
}

var sectors = map[string]string{
	"C": "Grains", "S": "Grains", "SM": "Grains", "BO": "Grains", "W": "Grains", "KW": "Grains",
	"CC": "Softs", "CT": "Softs", "KC": "Softs", "SB": "Softs",
	"LC": "Livestock", "LH": "Livestock",
	"CL": "Energy", "CO": "Energy", "HO": "Energy", "QS": "Energy", "XB": "Energy", "NG": "Energy",
	"HG": "Base Metals", "LN": "Base Metals", "LX": "Base Metals", "LA": "Base Metals",
	"GC": "Precious Metals", "SI": "Precious Metals",
}
