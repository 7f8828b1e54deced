package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/meenmo/quantlib/marketdata/b3"
	"github.com/meenmo/quantlib/tracker"
)

// TrackerRow is one tracker level in the long trackers table.
type TrackerRow struct {
	TimeStamp time.Time `gorm:"column:time_stamp;type:date;primaryKey"`
	FhTicker  string    `gorm:"column:fh_ticker;primaryKey"`
	Value     float64   `gorm:"column:value;not null"`
	BatchID   uuid.UUID `gorm:"column:batch_id;type:uuid"`
}

func (TrackerRow) TableName() string { return "trackers" }

// B3Future is one bulletin line of a B3 futures contract.
type B3Future struct {
	TimeStamp    time.Time `gorm:"column:time_stamp;type:date;primaryKey"`
	MaturityCode string    `gorm:"column:maturity_code;primaryKey"`
	Contract     string    `gorm:"column:contract;index"`

	OpenInterestOpen   int64   `gorm:"column:open_interest_open"`
	OpenInterestClose  int64   `gorm:"column:open_interest_close"`
	NumberOfTrades     int64   `gorm:"column:number_of_trades"`
	TradingVolume      int64   `gorm:"column:trading_volume"`
	FinancialVolume    float64 `gorm:"column:financial_volume"`
	PreviousSettlement float64 `gorm:"column:previous_settlement"`
	IndexedSettlement  float64 `gorm:"column:indexed_settlement"`
	OpeningPrice       float64 `gorm:"column:opening_price"`
	MinimumPrice       float64 `gorm:"column:minimum_price"`
	MaximumPrice       float64 `gorm:"column:maximum_price"`
	AveragePrice       float64 `gorm:"column:average_price"`
	LastPrice          float64 `gorm:"column:last_price"`
	SettlementPrice    float64 `gorm:"column:settlement_price"`
	LastBid            float64 `gorm:"column:last_bid"`
	LastOffer          float64 `gorm:"column:last_offer"`

	BatchID uuid.UUID `gorm:"column:batch_id;type:uuid"`
}

func (B3Future) TableName() string { return "B3futures" }

func trackerRows(rows []tracker.Row, batch uuid.UUID) []TrackerRow {
	out := make([]TrackerRow, len(rows))
	for i, r := range rows {
		out[i] = TrackerRow{TimeStamp: r.TimeStamp, FhTicker: r.FhTicker, Value: r.Value, BatchID: batch}
	}
	return out
}

func fromTrackerRows(rows []TrackerRow) []tracker.Row {
	out := make([]tracker.Row, len(rows))
	for i, r := range rows {
		out[i] = tracker.Row{TimeStamp: r.TimeStamp, FhTicker: r.FhTicker, Value: r.Value}
	}
	return out
}

func b3Future(r b3.Record, batch uuid.UUID) B3Future {
	return B3Future{
		TimeStamp:          r.TimeStamp,
		MaturityCode:       r.MaturityCode,
		Contract:           r.Contract,
		OpenInterestOpen:   r.OpenInterestOpen,
		OpenInterestClose:  r.OpenInterestClose,
		NumberOfTrades:     r.NumberOfTrades,
		TradingVolume:      r.TradingVolume,
		FinancialVolume:    r.FinancialVolume,
		PreviousSettlement: r.PreviousSettlement,
		IndexedSettlement:  r.IndexedSettlement,
		OpeningPrice:       r.OpeningPrice,
		MinimumPrice:       r.MinimumPrice,
		MaximumPrice:       r.MaximumPrice,
		AveragePrice:       r.AveragePrice,
		LastPrice:          r.LastPrice,
		SettlementPrice:    r.SettlementPrice,
		LastBid:            r.LastBid,
		LastOffer:          r.LastOffer,
		BatchID:            batch,
	}
}

func (f B3Future) record() b3.Record {
	return b3.Record{
		TimeStamp:          f.TimeStamp.UTC(),
		Contract:           f.Contract,
		MaturityCode:       f.MaturityCode,
		OpenInterestOpen:   f.OpenInterestOpen,
		OpenInterestClose:  f.OpenInterestClose,
		NumberOfTrades:     f.NumberOfTrades,
		TradingVolume:      f.TradingVolume,
		FinancialVolume:    f.FinancialVolume,
		PreviousSettlement: f.PreviousSettlement,
		IndexedSettlement:  f.IndexedSettlement,
		OpeningPrice:       f.OpeningPrice,
		MinimumPrice:       f.MinimumPrice,
		MaximumPrice:       f.MaximumPrice,
		AveragePrice:       f.AveragePrice,
		LastPrice:          f.LastPrice,
		SettlementPrice:    f.SettlementPrice,
		LastBid:            f.LastBid,
		LastOffer:          f.LastOffer,
	}
}
