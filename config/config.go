package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds calendar, solver, curve and infrastructure parameters.
type Config struct {
	Calendar  CalendarConfig  `mapstructure:"calendar"`
	Solver    SolverConfig    `mapstructure:"solver"`
	Curve     CurveConfig     `mapstructure:"curve"`
	Bond      BondConfig      `mapstructure:"bond"`
	Tracker   TrackerConfig   `mapstructure:"tracker"`
	Portfolio PortfolioConfig `mapstructure:"portfolio"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
}

// CalendarConfig bounds the years over which holiday rules are evaluated.
// Rules run from YearStart-1 through YearEnd.
type CalendarConfig struct {
	YearStart int `mapstructure:"year_start"`
	YearEnd   int `mapstructure:"year_end"`
}

// SolverConfig is the iteration budget shared by the NSS fit and the portfolio optimisers.
type SolverConfig struct {
	// MaxIter is the number of basin-hopping rounds (and the NSS outer iteration cap).
	MaxIter int `mapstructure:"max_iter"`
	// NoImprove stops basin hopping after this many rounds without a better minimum.
	NoImprove int `mapstructure:"no_improve"`
	// Temperature is the Metropolis acceptance temperature.
	Temperature float64 `mapstructure:"temperature"`
	// StepSize is the half-width of the uniform perturbation between rounds.
	StepSize float64 `mapstructure:"step_size"`
	// LocalIter caps iterations of a single local minimisation.
	LocalIter int `mapstructure:"local_iter"`
	// Tolerance is the objective tolerance of the local minimiser.
	Tolerance float64 `mapstructure:"tolerance"`
	// Penalty scales equality-constraint violations in penalised objectives.
	Penalty float64 `mapstructure:"penalty"`
	// Seed drives the perturbations so runs are reproducible.
	Seed int64 `mapstructure:"seed"`
}

type CurveConfig struct {
	NSSLambda1 float64 `mapstructure:"nss_lambda1"`
	NSSLambda2 float64 `mapstructure:"nss_lambda2"`
}

type BondConfig struct {
	// PriceTolerance is the |price - price(rate)| above which a bond is flagged inconsistent.
	PriceTolerance float64 `mapstructure:"price_tolerance"`
	BrentTolerance float64 `mapstructure:"brent_tolerance"`
	BrentMaxIter   int     `mapstructure:"brent_max_iter"`
}

type TrackerConfig struct {
	// BondFutureCalendars maps a bond-future root (e.g. "ty") to the calendar used
	// for its first-notice roll. Roots not listed use DefaultBondFutureCalendar.
	BondFutureCalendars       map[string]string `mapstructure:"bond_future_calendars"`
	DefaultBondFutureCalendar string            `mapstructure:"default_bond_future_calendar"`
}

// PortfolioConfig holds the covariance estimator and weighting defaults.
type PortfolioConfig struct {
	// CovPeriod is the return horizon h in business days.
	CovPeriod int `mapstructure:"cov_period"`
	// CovWindow is the rolling window and the minimum history before a
	// conditional estimate replaces the unconditional one.
	CovWindow int     `mapstructure:"cov_window"`
	Halflife  float64 `mapstructure:"halflife"`
	VolTarget float64 `mapstructure:"vol_target"`
	// Rebalance is the default rebalance code.
	Rebalance string `mapstructure:"rebalance"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	Calendar: CalendarConfig{YearStart: 1990, YearEnd: 2100},
	Solver: SolverConfig{
		MaxIter:     500,
		NoImprove:   100,
		Temperature: 1.0,
		StepSize:    0.5,
		LocalIter:   200,
		Tolerance:   1e-12,
		Penalty:     1e4,
		Seed:        1,
	},
	Curve: CurveConfig{NSSLambda1: 2.2648, NSSLambda2: 0.3330},
	Bond: BondConfig{
		PriceTolerance: 1e-6,
		BrentTolerance: 1e-14,
		BrentMaxIter:   200,
	},
	Tracker: TrackerConfig{
		BondFutureCalendars: map[string]string{
			"tu": "us_trading", "fv": "us_trading", "ty": "us_trading", "us": "us_trading", "wn": "us_trading",
			"rx": "libor_eur_on", "oe": "libor_eur_on", "du": "libor_eur_on", "ub": "libor_eur_on",
			"g": "libor_base", "cn": "us_trading", "xm": "us_trading", "jb": "libor_jpy",
		},
		DefaultBondFutureCalendar: "us_trading",
	},
	Portfolio: PortfolioConfig{CovPeriod: 21, CovWindow: 756, Halflife: 60, VolTarget: 0.1, Rebalance: "ME"},
	Log:       LogConfig{Level: "info", Format: "text"},
}

// cfg is the active configuration. Defaults to DefaultConfig.
var cfg = DefaultConfig

// SetConfig replaces the active configuration.
func SetConfig(c Config) {
	cfg = c
}

// GetConfig returns the active configuration.
func GetConfig() Config {
	return cfg
}

// Load reads configuration from path (optional) and QUANT_* environment variables
// on top of DefaultConfig. Nested keys use underscores: QUANT_SOLVER_MAX_ITER.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("QUANT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config.Load: read %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config.Load: unmarshal: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig
	v.SetDefault("calendar.year_start", d.Calendar.YearStart)
	v.SetDefault("calendar.year_end", d.Calendar.YearEnd)

	v.SetDefault("solver.max_iter", d.Solver.MaxIter)
	v.SetDefault("solver.no_improve", d.Solver.NoImprove)
	v.SetDefault("solver.temperature", d.Solver.Temperature)
	v.SetDefault("solver.step_size", d.Solver.StepSize)
	v.SetDefault("solver.local_iter", d.Solver.LocalIter)
	v.SetDefault("solver.tolerance", d.Solver.Tolerance)
	v.SetDefault("solver.penalty", d.Solver.Penalty)
	v.SetDefault("solver.seed", d.Solver.Seed)

	v.SetDefault("curve.nss_lambda1", d.Curve.NSSLambda1)
	v.SetDefault("curve.nss_lambda2", d.Curve.NSSLambda2)

	v.SetDefault("bond.price_tolerance", d.Bond.PriceTolerance)
	v.SetDefault("bond.brent_tolerance", d.Bond.BrentTolerance)
	v.SetDefault("bond.brent_max_iter", d.Bond.BrentMaxIter)

	v.SetDefault("tracker.bond_future_calendars", d.Tracker.BondFutureCalendars)
	v.SetDefault("tracker.default_bond_future_calendar", d.Tracker.DefaultBondFutureCalendar)

	v.SetDefault("portfolio.cov_period", d.Portfolio.CovPeriod)
	v.SetDefault("portfolio.cov_window", d.Portfolio.CovWindow)
	v.SetDefault("portfolio.halflife", d.Portfolio.Halflife)
	v.SetDefault("portfolio.vol_target", d.Portfolio.VolTarget)
	v.SetDefault("portfolio.rebalance", d.Portfolio.Rebalance)

	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

func (c Config) validate() error {
	if c.Calendar.YearStart <= 0 || c.Calendar.YearEnd < c.Calendar.YearStart {
		return fmt.Errorf("config: invalid calendar range [%d, %d]", c.Calendar.YearStart, c.Calendar.YearEnd)
	}
	if c.Solver.MaxIter <= 0 || c.Solver.LocalIter <= 0 {
		return fmt.Errorf("config: solver iterations must be positive")
	}
	if c.Solver.NoImprove <= 0 {
		return fmt.Errorf("config: solver.no_improve must be positive")
	}
	if c.Portfolio.CovPeriod <= 0 || c.Portfolio.CovWindow <= 0 {
		return fmt.Errorf("config: portfolio covariance period and window must be positive")
	}
	return nil
}
