package daycount

import (
	"fmt"
	"time"
)

// broadcast pairs two date slices. A length-one side is repeated against the other.
func broadcast(d1, d2 []time.Time) (int, error) {
	switch {
	case len(d1) == len(d2):
		return len(d1), nil
	case len(d1) == 1:
		return len(d2), nil
	case len(d2) == 1:
		return len(d1), nil
	}
	return 0, fmt.Errorf("daycount: cannot broadcast %d dates against %d", len(d1), len(d2))
}

func at(ds []time.Time, i int) time.Time {
	if len(ds) == 1 {
		return ds[0]
	}
	return ds[i]
}

// TfSlice is Tf over paired (or broadcast) dates.
func (dc DayCount) TfSlice(d1, d2 []time.Time) ([]float64, error) {
	n, err := broadcast(d1, d2)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		v, err := dc.Tf(at(d1, i), at(d2, i))
		if err != nil {
			return nil, fmt.Errorf("TfSlice: index %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// DaysSlice is Days over paired (or broadcast) dates.
func (dc DayCount) DaysSlice(d1, d2 []time.Time) ([]int, error) {
	n, err := broadcast(d1, d2)
	if err != nil {
		return nil, err
	}
	out := make([]int, n)
	for i := range out {
		out[i] = dc.Days(at(d1, i), at(d2, i))
	}
	return out, nil
}

// RollSlice applies BusDateRoll to every date.
func (dc DayCount) RollSlice(ds []time.Time, roll Adjustment) []time.Time {
	out := make([]time.Time, len(ds))
	for i, d := range ds {
		out[i] = dc.BusDateRoll(d, roll)
	}
	return out
}

// WorkdaySlice applies Workday with the same offset to every date.
func (dc DayCount) WorkdaySlice(ds []time.Time, offset int) []time.Time {
	out := make([]time.Time, len(ds))
	for i, d := range ds {
		out[i] = dc.Workday(d, offset)
	}
	return out
}

func (dc DayCount) IsBusSlice(ds []time.Time) []bool {
	out := make([]bool, len(ds))
	for i, d := range ds {
		out[i] = dc.IsBus(d)
	}
	return out
}
