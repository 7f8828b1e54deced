package b3_test

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/marketdata/b3"
)

const bulletin = `time_stamp,contract,maturity_code,open_interest_open,open_interest_close,number_of_trades,trading_volume,financial_volume,previous_settlement,indexed_settlement,opening_price,minimum_price,maximum_price,average_price,last_price,settlement_price,last_bid,last_offer
2020-01-02,DI1,F21,1000,1200,35,500,49000000.5,95000.1,95010.2,4.40,4.38,4.45,4.41,4.42,4.43,4.41,4.43
2020-01-02,DI1,F22,800,900,20,300,28000000,90000,90010,4.70,4.66,4.72,4.69,4.69,4.70,4.68,4.70
2020-01-02,DOL,G20,10,10,1,1,1,4000,4000,4010,4005,4020,4012,4015,4016,4014,4016
bad-date,DI1,F23,1,1,1,1,1,1,1,1,1,1,1,1,1,1,1
2020-01-03,DI1,F21,1200,1100,40,600,1,1,1,4.39,4.37,4.41,4.39,4.40,4.40,4.39,4.41
`

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestParseCSV(t *testing.T) {
	t.Parallel()

	recs, err := b3.ParseCSV(strings.NewReader(bulletin))
	require.NoError(t, err)
	require.Len(t, recs, 4)

	r := recs[0]
	assert.Equal(t, d(2020, 1, 2), r.TimeStamp)
	assert.Equal(t, "DI1F21", r.Code())
	assert.Equal(t, int64(1000), r.OpenInterestOpen)
	assert.Equal(t, int64(1200), r.OpenInterestClose)
	assert.Equal(t, int64(35), r.NumberOfTrades)
	assert.Equal(t, int64(500), r.TradingVolume)
	assert.Equal(t, 49000000.5, r.FinancialVolume)
	assert.Equal(t, 95000.1, r.PreviousSettlement)
	assert.Equal(t, 4.42, r.LastPrice)
	assert.Equal(t, 4.43, r.SettlementPrice)
	assert.Equal(t, 4.43, r.LastOffer)
}

func TestParseCSVBrazilianFormat(t *testing.T) {
	t.Parallel()

	in := "TIME_STAMP;maturity_code;last_price;financial_volume;number_of_trades\n" +
		"02/01/2020;f21;4,42;1.234.567,89;-\n" +
		";;;;\n"
	recs, err := b3.ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, d(2020, 1, 2), recs[0].TimeStamp)
	assert.Equal(t, "F21", recs[0].MaturityCode)
	assert.Equal(t, 4.42, recs[0].LastPrice)
	assert.Equal(t, 1234567.89, recs[0].FinancialVolume)
	assert.Equal(t, int64(0), recs[0].NumberOfTrades)
	assert.Equal(t, "", recs[0].Contract)
}

func TestParseCSVErrors(t *testing.T) {
	t.Parallel()

	_, err := b3.ParseCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, errs.ErrPrecondition)

	_, err = b3.ParseCSV(strings.NewReader("time_stamp,last_price\n2020-01-02,4.4\n"))
	assert.ErrorIs(t, err, errs.ErrPrecondition)

	recs, err := b3.ParseCSV(strings.NewReader("time_stamp,maturity_code,last_price\n2020-01-02,F21,abc\n"))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestParseXLSX(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	rows := [][]any{
		{"time_stamp", "contract", "maturity_code", "last_price", "open_interest_close"},
		{"2020-01-02", "DI1", "F21", "4.42", "1200"},
		{"2020-01-02", "DI1", "N20", "4.30", "50"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "bulletin.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	recs, err := b3.ParseXLSX(path, "")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "N20", recs[1].MaturityCode)
	assert.Equal(t, int64(1200), recs[0].OpenInterestClose)

	_, err = b3.ParseXLSX(path, "missing")
	assert.ErrorIs(t, err, errs.ErrPrecondition)
	_, err = b3.ParseXLSX(filepath.Join(t.TempDir(), "none.xlsx"), "")
	assert.ErrorIs(t, err, errs.ErrPrecondition)
}

func TestDI1Feed(t *testing.T) {
	t.Parallel()

	recs, err := b3.ParseCSV(strings.NewReader(bulletin))
	require.NoError(t, err)

	q := b3.DI1Quotes(recs, d(2020, 1, 2))
	assert.Equal(t, map[string]float64{"F21": 4.42, "F22": 4.69}, q)

	feed := b3.NewMapFeed(recs)
	assert.Equal(t, []time.Time{d(2020, 1, 2), d(2020, 1, 3)}, feed.Days())
	got, ok := feed.QuotesOn(d(2020, 1, 3))
	require.True(t, ok)
	assert.Equal(t, map[string]float64{"F21": 4.40}, got)

	c, err := b3.DI1Curve(feed, d(2020, 1, 2))
	require.NoError(t, err)
	require.Len(t, c.Contracts, 2)
	assert.Equal(t, "F21", c.Contracts[0].Code)
	assert.InDelta(t, 0.0442, c.Contracts[0].Yield, 1e-15)

	_, err = b3.DI1Curve(feed, d(2020, 1, 6))
	assert.ErrorIs(t, err, errs.ErrOutOfRange)
}
