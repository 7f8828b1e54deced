package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/meenmo/quantlib/series"
	"github.com/meenmo/quantlib/utils"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(utils.DateLayout, fl.Field().String())
		return err == nil
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// readInput decodes the command's JSON document into v and validates it.
func readInput(cmd *cobra.Command, v any) error {
	path, _ := cmd.Flags().GetString("input")
	var (
		raw []byte
		err error
	)
	if path = strings.TrimSpace(path); path != "" {
		raw, err = os.ReadFile(path)
	} else {
		raw, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return errors.New("empty input")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to parse JSON input: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, len(ve))
	for i, fe := range ve {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		if fe.Param() != "" {
			msgs[i] = fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param())
		} else {
			msgs[i] = fmt.Sprintf("%s: failed %s", field, fe.Tag())
		}
	}
	return fmt.Errorf("invalid input: %s", strings.Join(msgs, "; "))
}

func writeJSON(cmd *cobra.Command, v any) error {
	out, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func parseDate(s string) time.Time {
	d, _ := time.Parse(utils.DateLayout, s)
	return d
}

func parseDates(ss []string) ([]time.Time, error) {
	out := make([]time.Time, len(ss))
	for i, s := range ss {
		d, err := time.Parse(utils.DateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q", s)
		}
		out[i] = d
	}
	return out, nil
}

func formatDates(ds []time.Time) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Format(utils.DateLayout)
	}
	return out
}

// Float is a float64 that travels as null when it is NaN or infinite.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func (f *Float) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = Float(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

func floats(v []float64) []Float {
	out := make([]Float, len(v))
	for i, x := range v {
		out[i] = Float(x)
	}
	return out
}

func unfloats(v []Float) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// Frame is the JSON form of a dates x columns panel.
type Frame struct {
	Dates   []string  `json:"dates" validate:"required,min=1,dive,date"`
	Columns []string  `json:"columns" validate:"required,min=1"`
	Data    [][]Float `json:"data" validate:"required"`
}

func (f *Frame) frame() (*series.Frame, error) {
	dates, err := parseDates(f.Dates)
	if err != nil {
		return nil, err
	}
	if len(f.Data) != len(dates) {
		return nil, fmt.Errorf("frame has %d dates and %d rows", len(dates), len(f.Data))
	}
	out := series.NewFrame(dates, f.Columns)
	for i, row := range f.Data {
		if len(row) != len(f.Columns) {
			return nil, fmt.Errorf("row %s has %d values for %d columns", f.Dates[i], len(row), len(f.Columns))
		}
		out.Data[i] = unfloats(row)
	}
	return out, nil
}

func toFrame(f *series.Frame) Frame {
	out := Frame{Dates: formatDates(f.Dates), Columns: f.Columns, Data: make([][]Float, len(f.Data))}
	for i, row := range f.Data {
		out.Data[i] = floats(row)
	}
	return out
}

// Series is the JSON form of one named series.
type Series struct {
	Name   string   `json:"name"`
	Dates  []string `json:"dates"`
	Values []Float  `json:"values"`
}

func toSeries(s *series.Series) Series {
	return Series{Name: s.Name, Dates: formatDates(s.Dates), Values: floats(s.Values)}
}
