package main

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/meenmo/quantlib/config"
	"github.com/meenmo/quantlib/logger"
	"github.com/meenmo/quantlib/series"
	"github.com/meenmo/quantlib/store"
	"github.com/meenmo/quantlib/tracker"
)

// TrackerSpec is one tracker to build. Data holds the inputs as columns:
//
//	commodity  settlement prices keyed by contract code (e.g. CLH21)
//	equity     price
//	fx         spot, points
//	irs        spot, forward (percent)
//	ntnb       vna, yield (percent)
type TrackerSpec struct {
	Kind      string         `json:"kind" validate:"required,oneof=commodity equity fx irs ntnb"`
	Root      string         `json:"root" validate:"required_if=Kind commodity"`
	Symbol    string         `json:"symbol" validate:"required_if=Kind equity"`
	Country   string         `json:"country"`
	Currency  string         `json:"currency"`
	Family    string         `json:"family" validate:"omitempty,oneof=GSCI BCOM"`
	Schedule  []string       `json:"schedule" validate:"omitempty,len=12"`
	Start     string         `json:"start" validate:"omitempty,date"`
	Tenor     int            `json:"tenor" validate:"required_if=Kind irs,gte=0"`
	Expiry    string         `json:"expiry" validate:"omitempty,date"`
	Coupon    float64        `json:"coupon" validate:"gte=0"`
	Calendar  string         `json:"calendar"`
	Dividends []DividendSpec `json:"dividends" validate:"dive"`
	Data      Frame          `json:"data"`
}

type DividendSpec struct {
	ExDate string  `json:"ex_date" validate:"required,date"`
	Amount float64 `json:"amount"`
	Type   string  `json:"type"`
}

// TrackerBatchInput builds trackers concurrently. Save upserts the levels
// into the configured database.
type TrackerBatchInput struct {
	Trackers []TrackerSpec `json:"trackers" validate:"required,min=1,dive"`
	Save     bool          `json:"save"`
	Workers  int           `json:"workers" validate:"gte=0"`
}

type TrackerOutput struct {
	FhTicker   string `json:"fh_ticker"`
	AssetClass string `json:"asset_class"`
	Type       string `json:"type"`
	Currency   string `json:"currency"`
	Country    string `json:"country"`
	Sector     string `json:"sector,omitempty"`
	RollMethod string `json:"roll_method,omitempty"`
	Index      Series `json:"index"`
}

type TrackerBatchOutput struct {
	Trackers []TrackerOutput `json:"trackers"`
	Batch    string          `json:"batch,omitempty"`
}

func newTrackerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracker",
		Short: "Build excess and total return trackers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "batch",
		Short: "Build a batch of trackers and optionally store them",
		RunE:  runTrackerBatch,
	})
	return cmd
}

func runTrackerBatch(cmd *cobra.Command, args []string) error {
	var in TrackerBatchInput
	if err := readInput(cmd, &in); err != nil {
		return err
	}
	results, err := buildTrackers(cmd.Context(), in.Trackers, in.Workers)
	if err != nil {
		return err
	}

	out := TrackerBatchOutput{Trackers: make([]TrackerOutput, len(results))}
	var rows []tracker.Row
	for i, r := range results {
		d := r.Description
		out.Trackers[i] = TrackerOutput{
			FhTicker:   d.FhTicker,
			AssetClass: d.AssetClass,
			Type:       d.Type,
			Currency:   d.Currency,
			Country:    d.Country,
			Sector:     d.Sector,
			RollMethod: d.RollMethod,
			Index:      toSeries(r.Index()),
		}
		rows = append(rows, r.Melt()...)
	}

	if in.Save {
		dsn := config.GetConfig().Database.DSN
		if dsn == "" {
			return errors.New("save requested but database.dsn is not configured")
		}
		s, err := store.Open(dsn, logger.L)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.Migrate(cmd.Context()); err != nil {
			return err
		}
		batch, err := s.SaveTrackers(cmd.Context(), rows)
		if err != nil {
			return err
		}
		out.Batch = batch.String()
	}
	return writeJSON(cmd, out)
}

// buildTrackers runs the builders on a bounded pool; results keep the order
// of specs and the first failure cancels the rest.
func buildTrackers(ctx context.Context, specs []TrackerSpec, workers int) ([]*tracker.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]*tracker.Result, len(specs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, spec := range specs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := spec.build()
			if err != nil {
				return fmt.Errorf("tracker %d (%s): %w", i, spec.Kind, err)
			}
			results[i] = r
			logger.L.Debug("tracker built", "ticker", r.Description.FhTicker, "days", len(r.Days))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s TrackerSpec) build() (*tracker.Result, error) {
	data, err := s.Data.frame()
	if err != nil {
		return nil, err
	}
	switch s.Kind {
	case "commodity":
		in := tracker.CommodityInput{
			Root:     s.Root,
			Country:  s.Country,
			Currency: s.Currency,
			Family:   tracker.Index(s.Family),
			Prices:   data,
		}
		if len(s.Schedule) > 0 {
			sched, err := tracker.ParseRollSchedule(s.Schedule)
			if err != nil {
				return nil, err
			}
			in.Schedule = sched
		}
		if s.Start != "" {
			in.Start = parseDate(s.Start)
		}
		return tracker.Commodity(in)
	case "equity":
		price, err := column(data, "price")
		if err != nil {
			return nil, err
		}
		divs := make([]tracker.Dividend, len(s.Dividends))
		for i, d := range s.Dividends {
			divs[i] = tracker.Dividend{ExDate: parseDate(d.ExDate), Amount: d.Amount, Type: d.Type}
		}
		return tracker.Equity(tracker.EquityInput{
			Symbol:    s.Symbol,
			Country:   s.Country,
			Currency:  s.Currency,
			Price:     price,
			Dividends: divs,
		})
	case "fx":
		spot, points, err := columns(data, "spot", "points")
		if err != nil {
			return nil, err
		}
		return tracker.FXForward(tracker.FXInput{Currency: s.Currency, Spot: spot, Points: points, Calendar: s.Calendar})
	case "irs":
		spot, fwd, err := columns(data, "spot", "forward")
		if err != nil {
			return nil, err
		}
		return tracker.ForwardSwap(tracker.IRSInput{
			Currency: s.Currency,
			Country:  s.Country,
			Tenor:    s.Tenor,
			Spot:     spot,
			Forward:  fwd,
		})
	default:
		if s.Expiry == "" {
			return nil, errors.New("ntnb tracker needs an expiry")
		}
		vna, yield, err := columns(data, "vna", "yield")
		if err != nil {
			return nil, err
		}
		return tracker.NTNB(tracker.NTNBInput{Expiry: parseDate(s.Expiry), VNA: vna, Yield: yield, Coupon: s.Coupon})
	}
}

func column(f *series.Frame, name string) (*series.Series, error) {
	j := f.ColIndex(name)
	if j < 0 {
		return nil, fmt.Errorf("data has no %q column", name)
	}
	return f.Series(j), nil
}

func columns(f *series.Frame, a, b string) (*series.Series, *series.Series, error) {
	sa, err := column(f, a)
	if err != nil {
		return nil, nil, err
	}
	sb, err := column(f, b)
	if err != nil {
		return nil, nil, err
	}
	return sa, sb, nil
}
