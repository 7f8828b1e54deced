package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meenmo/quantlib/perf"
	"github.com/meenmo/quantlib/series"
	"github.com/meenmo/quantlib/utils"
)

// PerfInput summarises the columns of an index panel. With Benchmark set,
// that column's drawdowns drive a tail risk table of the other columns.
type PerfInput struct {
	Index      Frame  `json:"index"`
	Frequency  string `json:"frequency" validate:"omitempty,oneof=daily weekly monthly"`
	SameWindow bool   `json:"same_window"`
	Benchmark  string `json:"benchmark"`
	Window     int    `json:"window" validate:"gte=0"`
	K          int    `json:"k" validate:"gte=0"`
	RawReturns bool   `json:"raw_returns"`
	Monthly    bool   `json:"monthly"`
	// XLSX writes the tables to a workbook at this path as well.
	XLSX string `json:"xlsx"`
}

type PerfRow struct {
	Name       string `json:"name"`
	Frequency  string `json:"frequency"`
	Return     Float  `json:"return"`
	Vol        Float  `json:"vol"`
	Sharpe     Float  `json:"sharpe"`
	Sortino    Float  `json:"sortino"`
	MaxDD      Float  `json:"max_dd"`
	MaxDDToVol Float  `json:"max_dd_to_vol"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Obs        int    `json:"obs"`
}

func perfRow(r perf.Row) PerfRow {
	return PerfRow{
		Name:       r.Name,
		Frequency:  string(r.Frequency),
		Return:     Float(r.Return),
		Vol:        Float(r.Vol),
		Sharpe:     Float(r.Sharpe),
		Sortino:    Float(r.Sortino),
		MaxDD:      Float(r.MaxDD),
		MaxDDToVol: Float(r.MaxDDToVol),
		Start:      r.Start.Format(utils.DateLayout),
		End:        r.End.Format(utils.DateLayout),
		Obs:        r.Obs,
	}
}

type TailRow struct {
	Name             string `json:"name"`
	MeanReactivity   Float  `json:"mean_reactivity"`
	MedianReactivity Float  `json:"median_reactivity"`
	Reliability      Float  `json:"reliability"`
	Convexity        Float  `json:"convexity"`
	TailBeta         Float  `json:"tail_beta"`
	AvgCarry         Float  `json:"avg_carry"`
	RecoveryCarry    Float  `json:"recovery_carry"`
	Start            string `json:"start"`
	End              string `json:"end"`
}

type TailOutput struct {
	Label  string    `json:"label"`
	Rows   []TailRow `json:"rows"`
	Events int       `json:"events"`
}

type YearRow struct {
	Year   int       `json:"year"`
	Months [12]Float `json:"months"`
	Return Float     `json:"return"`
	Vol    Float     `json:"vol"`
	Sharpe Float     `json:"sharpe"`
}

type PerfOutput struct {
	Perf    []PerfRow            `json:"perf"`
	Tail    *TailOutput          `json:"tail,omitempty"`
	Monthly map[string][]YearRow `json:"monthly,omitempty"`
}

func newPerfCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "perf",
		Short: "Performance, drawdown and tail risk tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			var in PerfInput
			if err := readInput(cmd, &in); err != nil {
				return err
			}
			index, err := in.Index.frame()
			if err != nil {
				return err
			}
			freq := perf.Frequency(in.Frequency)
			rows, err := perf.PerfTables(index, freq, in.SameWindow)
			if err != nil {
				return err
			}
			var wb *perf.Workbook
			if in.XLSX != "" {
				wb = perf.NewWorkbook()
				if err := wb.AddPerf("perf", rows); err != nil {
					return err
				}
			}
			out := PerfOutput{Perf: make([]PerfRow, len(rows))}
			for i, r := range rows {
				out.Perf[i] = perfRow(r)
			}

			if in.Benchmark != "" {
				tail, err := in.tail(index, freq)
				if err != nil {
					return err
				}
				out.Tail = tailOutput(tail)
				if wb != nil {
					if err := wb.AddTail("tail", tail); err != nil {
						return err
					}
				}
			}

			if in.Monthly {
				out.Monthly = map[string][]YearRow{}
				for j, name := range index.Columns {
					years := perf.MonthlyTable(index.Series(j))
					out.Monthly[name] = yearRows(years)
					if wb != nil {
						if err := wb.AddMonthly(name, years); err != nil {
							return err
						}
					}
				}
			}

			if wb != nil {
				if err := wb.SaveAs(in.XLSX); err != nil {
					return err
				}
			}
			return writeJSON(cmd, out)
		},
	}
}

func (in PerfInput) tail(index *series.Frame, freq perf.Frequency) (*perf.TailTable, error) {
	j := index.ColIndex(in.Benchmark)
	if j < 0 {
		return nil, fmt.Errorf("benchmark %q is not a column of the index", in.Benchmark)
	}
	var others []string
	for _, c := range index.Columns {
		if c != in.Benchmark {
			others = append(others, c)
		}
	}
	if len(others) == 0 {
		return nil, fmt.Errorf("no columns besides the benchmark %q", in.Benchmark)
	}
	sel, err := index.Select(others...)
	if err != nil {
		return nil, err
	}
	return perf.TailRiskTable(sel, index.Series(j), perf.TailOptions{
		Freq:       freq,
		SameWindow: in.SameWindow,
		Window:     in.Window,
		K:          in.K,
		RawReturns: in.RawReturns,
	})
}

func tailOutput(t *perf.TailTable) *TailOutput {
	out := &TailOutput{Label: t.Label, Events: len(t.Events), Rows: make([]TailRow, len(t.Rows))}
	for i, r := range t.Rows {
		out.Rows[i] = TailRow{
			Name:             r.Name,
			MeanReactivity:   Float(r.MeanReactivity),
			MedianReactivity: Float(r.MedianReactivity),
			Reliability:      Float(r.Reliability),
			Convexity:        Float(r.Convexity),
			TailBeta:         Float(r.TailBeta),
			AvgCarry:         Float(r.AvgCarry),
			RecoveryCarry:    Float(r.RecoveryCarry),
			Start:            r.Start.Format(utils.DateLayout),
			End:              r.End.Format(utils.DateLayout),
		}
	}
	return out
}

func yearRows(years []perf.YearRow) []YearRow {
	out := make([]YearRow, len(years))
	for i, y := range years {
		out[i] = YearRow{Year: y.Year, Return: Float(y.Return), Vol: Float(y.Vol), Sharpe: Float(y.Sharpe)}
		for m, v := range y.Months {
			out[i].Months[m] = Float(v)
		}
	}
	return out
}
