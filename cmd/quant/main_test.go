package main

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Commands share the process config and logger, so these tests run serially.

func runJSON(t *testing.T, input string, args ...string) (int, map[string]any) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append(args, "--log-level", "error"), strings.NewReader(input), &stdout, &stderr)
	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(stdout.String()), "{") {
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &out), stdout.String())
	}
	return code, out
}

func runInto(t *testing.T, input string, v any, args ...string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append(args, "--log-level", "error"), strings.NewReader(input), &stdout, &stderr)
	require.Equal(t, 0, code, stdout.String())
	require.NoError(t, json.Unmarshal(stdout.Bytes(), v))
}

func TestHolidaysCommand(t *testing.T) {
	var out HolidaysOutput
	runInto(t, `{"calendar": "anbima", "start": "2021-01-01", "end": "2021-12-31"}`, &out, "holidays")

	assert.Equal(t, "cdr_anbima", out.Calendar)
	assert.Equal(t, []string{
		"2021-01-01", "2021-02-15", "2021-02-16", "2021-04-02", "2021-04-21", "2021-05-01",
		"2021-06-03", "2021-09-07", "2021-10-12", "2021-11-02", "2021-11-15", "2021-12-25",
	}, out.Holidays)
}

func TestDaycountCommand(t *testing.T) {
	var out struct {
		Days     []int     `json:"days"`
		YearFrac []float64 `json:"year_fraction"`
	}
	runInto(t, `{"convention": "BUS/252", "calendar": "anbima", "start": ["2021-01-04"], "end": ["2021-01-11", "2021-02-17"]}`,
		&out, "daycount")

	// Carnival Monday and Tuesday fall in the second window.
	assert.Equal(t, []int{5, 30}, out.Days)
	assert.InDelta(t, 5.0/252, out.YearFrac[0], 1e-15)
	assert.InDelta(t, 30.0/252, out.YearFrac[1], 1e-15)
}

func TestBondLTNRoundTrip(t *testing.T) {
	var priced BondOutput
	runInto(t, `{"ref": "2021-01-04", "expiry": "2021-01-11", "rate": 0.1}`, &priced, "bond", "ltn")

	tau := 5.0 / 252
	assert.Equal(t, "ltn", priced.Type)
	assert.InDelta(t, 1000/math.Pow(1.1, tau), float64(priced.Price), 1e-9)
	assert.InDelta(t, tau, float64(priced.Risk.Macaulay), 1e-12)
	require.Len(t, priced.Cashflows, 1)
	assert.Equal(t, "2021-01-11", priced.Cashflows[0].Date)

	in, err := json.Marshal(map[string]any{"ref": "2021-01-04", "expiry": "2021-01-11", "price": float64(priced.Price)})
	require.NoError(t, err)
	var solved BondOutput
	runInto(t, string(in), &solved, "bond", "ltn")
	assert.InDelta(t, 0.1, float64(solved.Rate), 1e-9)
}

func TestCurveRateCommand(t *testing.T) {
	var out CurveRateOutput
	runInto(t, `{"days": [10, 20], "rates": [0.1, 0.2], "method": "linear", "at": [15]}`, &out, "curve", "rate")

	assert.Equal(t, "linear", out.Method)
	require.Len(t, out.Rates, 1)
	assert.InDelta(t, 0.15, float64(out.Rates[0]), 1e-12)
	assert.InDelta(t, math.Pow(1.15, -15.0/252), float64(out.Discounts[0]), 1e-12)
}

func TestWeightsCommand(t *testing.T) {
	input := `{
		"prices": {
			"dates": ["2021-01-04", "2021-01-05", "2021-01-06", "2021-01-07", "2021-01-08"],
			"columns": ["a", "b"],
			"data": [[100, 50], [101, 49], [99, 51], [102, 50], [100, 52]]
		},
		"scheme": "EW",
		"cov": {"period": 1}
	}`
	var out WeightsOutput
	runInto(t, input, &out, "weights")

	assert.Equal(t, "2021-01-08", out.Date)
	assert.InDelta(t, 0.5, float64(out.Weights["a"]), 1e-15)
	assert.InDelta(t, 0.5, float64(out.Weights["b"]), 1e-15)
	assert.Greater(t, float64(out.Vol), 0.0)
}

func TestTrackerBatchCommand(t *testing.T) {
	input := `{
		"trackers": [{
			"kind": "equity",
			"symbol": "PETR4",
			"country": "BR",
			"currency": "BRL",
			"data": {"dates": ["2021-01-04", "2021-01-05", "2021-01-06"], "columns": ["price"], "data": [[10], [11], [12]]}
		}]
	}`
	var out TrackerBatchOutput
	runInto(t, input, &out, "tracker", "batch")

	require.Len(t, out.Trackers, 1)
	tr := out.Trackers[0]
	assert.NotEmpty(t, tr.FhTicker)
	assert.Equal(t, tr.FhTicker, tr.Index.Name)
	require.Len(t, tr.Index.Values, 3)
	assert.InDelta(t, 100, float64(tr.Index.Values[0]), 1e-9)
	assert.InDelta(t, 110, float64(tr.Index.Values[1]), 1e-9)
	assert.InDelta(t, 120, float64(tr.Index.Values[2]), 1e-9)
	assert.Empty(t, out.Batch)
}

func TestPerfCommandWritesWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "perf.xlsx")
	in, err := json.Marshal(map[string]any{
		"index": map[string]any{
			"dates":   []string{"2021-01-04", "2021-01-11", "2021-01-18", "2021-01-25", "2021-02-01"},
			"columns": []string{"idx"},
			"data":    [][]float64{{100}, {110}, {99}, {105}, {89.25}},
		},
		"frequency": "monthly",
		"xlsx":      path,
	})
	require.NoError(t, err)

	var out PerfOutput
	runInto(t, string(in), &out, "perf")
	require.Len(t, out.Perf, 1)
	assert.InDelta(t, -0.2890735468750001, float64(out.Perf[0].Return), 1e-12)
	assert.InDelta(t, -0.1886363636363636, float64(out.Perf[0].MaxDD), 1e-12)
	assert.Equal(t, 5, out.Perf[0].Obs)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "perf")
}

func TestInputFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"calendar": "standard", "start": "2021-01-01", "end": "2021-12-31"}`), 0o600))

	var out HolidaysOutput
	runInto(t, "", &out, "holidays", "--input", path)
	assert.Empty(t, out.Holidays)
}

func TestErrorsAreJSON(t *testing.T) {
	code, out := runJSON(t, `{"start": "2021-01-01", "end": "2021-12-31"}`, "holidays")
	assert.Equal(t, 1, code)
	assert.Contains(t, out["error"], "calendar")

	code, out = runJSON(t, `{"calendar": "anbima", "start": "01/01/2021", "end": "2021-12-31"}`, "holidays")
	assert.Equal(t, 1, code)
	assert.Contains(t, out["error"], "start")

	code, out = runJSON(t, `{not json`, "holidays")
	assert.Equal(t, 1, code)
	assert.Contains(t, out["error"], "failed to parse JSON input")

	code, out = runJSON(t, `{"calendar": "narnia", "start": "2021-01-01", "end": "2021-12-31"}`, "holidays")
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, out["error"])

	code, out = runJSON(t, "", "nonsense")
	assert.Equal(t, 1, code)
	assert.Contains(t, out["error"], "unknown command")
}

func TestFloatNaNIsNull(t *testing.T) {
	b, err := json.Marshal([]Float{1.5, Float(math.NaN()), Float(math.Inf(1))})
	require.NoError(t, err)
	assert.Equal(t, "[1.5,null,null]", string(b))

	var back []Float
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, 1.5, float64(back[0]))
	assert.True(t, math.IsNaN(float64(back[1])))
}
