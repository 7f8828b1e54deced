package main

import (
	"github.com/spf13/cobra"

	"github.com/meenmo/quantlib/calendar"
	"github.com/meenmo/quantlib/daycount"
	"github.com/meenmo/quantlib/utils"
)

// HolidaysInput selects a calendar and the window of holidays to list.
type HolidaysInput struct {
	Calendar string `json:"calendar" validate:"required"`
	Start    string `json:"start" validate:"required,date"`
	End      string `json:"end" validate:"required,date"`
}

type HolidaysOutput struct {
	Calendar string   `json:"calendar"`
	Holidays []string `json:"holidays"`
}

func newHolidaysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "holidays",
		Short: "List the holidays of a calendar between two dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			var in HolidaysInput
			if err := readInput(cmd, &in); err != nil {
				return err
			}
			start, end := parseDate(in.Start), parseDate(in.End)
			cal, err := calendar.GetRange(in.Calendar, start.Year(), end.Year())
			if err != nil {
				return err
			}
			out := HolidaysOutput{Calendar: calendar.ModifyName(in.Calendar), Holidays: []string{}}
			for _, h := range cal.Holidays() {
				if h.Before(start) || h.After(end) {
					continue
				}
				out.Holidays = append(out.Holidays, h.Format(utils.DateLayout))
			}
			return writeJSON(cmd, out)
		},
	}
}

// DaycountInput pairs date vectors for a convention. A length-one side is
// broadcast against the other.
type DaycountInput struct {
	Convention string   `json:"convention" validate:"required"`
	Calendar   string   `json:"calendar"`
	Adjustment string   `json:"adjustment"`
	Offset     int      `json:"offset"`
	Start      []string `json:"start" validate:"required,min=1,dive,date"`
	End        []string `json:"end" validate:"required,min=1,dive,date"`
}

type DaycountOutput struct {
	Convention string  `json:"convention"`
	Days       []int   `json:"days"`
	YearFrac   []Float `json:"year_fraction"`
}

func newDaycountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daycount",
		Short: "Day counts and year fractions under a convention",
		RunE: func(cmd *cobra.Command, args []string) error {
			var in DaycountInput
			if err := readInput(cmd, &in); err != nil {
				return err
			}
			dc, err := daycount.Parse(in.Convention, in.Calendar)
			if err != nil {
				return err
			}
			if in.Adjustment != "" || in.Offset != 0 {
				adj, err := daycount.ParseAdjustment(in.Adjustment)
				if err != nil {
					return err
				}
				dc = dc.WithAdjustment(adj, in.Offset)
			}
			ends, err := parseDates(in.End)
			if err != nil {
				return err
			}
			starts, err := parseDates(in.Start)
			if err != nil {
				return err
			}
			days, err := dc.DaysSlice(starts, ends)
			if err != nil {
				return err
			}
			tfs, err := dc.TfSlice(starts, ends)
			if err != nil {
				return err
			}
			return writeJSON(cmd, DaycountOutput{Convention: dc.String(), Days: days, YearFrac: floats(tfs)})
		},
	}
}
