// Package store persists tracker levels and B3 bulletins in PostgreSQL.
package store

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	slogGorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/logger"
	"github.com/meenmo/quantlib/marketdata/b3"
	"github.com/meenmo/quantlib/series"
	"github.com/meenmo/quantlib/tracker"
	"github.com/meenmo/quantlib/utils"
)

const batchSize = 1000

// Store is the handle to the tracker and bulletin tables.
type Store struct {
	db  *gorm.DB
	log *slog.Logger
}

// Open connects with a key/value or postgres:// DSN. SQL is logged through
// l (logger.L when nil).
func Open(dsn string, l *slog.Logger) (*Store, error) {
	const op = "store.Open"
	l = logger.Or(l)
	conn, err := NormaliseDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(postgres.Open(conn), &gorm.Config{
		Logger: slogGorm.New(slogGorm.WithHandler(l.Handler())),
	})
	if err != nil {
		return nil, errs.Wrap(errs.Precondition, op, nil, err)
	}
	l.Info("connected to database")
	return &Store{db: db, log: l}, nil
}

// New wraps an existing gorm handle.
func New(db *gorm.DB, l *slog.Logger) *Store {
	return &Store{db: db, log: logger.Or(l)}
}

// NormaliseDSN turns postgres:// URLs into key/value connection strings.
func NormaliseDSN(dsn string) (string, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return "", errs.New(errs.Precondition, "store.NormaliseDSN", nil, "empty DSN")
	}
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return dsn, nil
	}
	kv, err := pq.ParseURL(dsn)
	if err != nil {
		return "", errs.Wrap(errs.Precondition, "store.NormaliseDSN", nil, err)
	}
	return kv, nil
}

// Migrate creates or updates both tables.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&TrackerRow{}, &B3Future{}); err != nil {
		return errs.Wrap(errs.Inconsistent, "store.Migrate", nil, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveTrackers upserts rows on (time_stamp, fh_ticker) and returns the batch
// id stamped on them.
func (s *Store) SaveTrackers(ctx context.Context, rows []tracker.Row) (uuid.UUID, error) {
	batch := uuid.New()
	if len(rows) == 0 {
		return batch, nil
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "time_stamp"}, {Name: "fh_ticker"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "batch_id"}),
	}).CreateInBatches(trackerRows(rows, batch), batchSize).Error
	if err != nil {
		return uuid.Nil, errs.Wrap(errs.Inconsistent, "store.SaveTrackers", len(rows), err)
	}
	s.log.Info("saved trackers", "rows", len(rows), "batch", batch)
	return batch, nil
}

// LoadTrackers reads the named tickers, or every ticker when none are given,
// pivoted to one column per ticker.
func (s *Store) LoadTrackers(ctx context.Context, tickers ...string) (*series.Frame, error) {
	var rows []TrackerRow
	q := s.db.WithContext(ctx).Order("time_stamp")
	if len(tickers) > 0 {
		q = q.Where("fh_ticker IN ?", tickers)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(errs.Inconsistent, "store.LoadTrackers", tickers, err)
	}
	if len(rows) == 0 {
		return nil, errs.New(errs.OutOfRange, "store.LoadTrackers", tickers, "no tracker rows found")
	}
	return tracker.Pivot(fromTrackerRows(rows)), nil
}

// SaveB3Futures upserts bulletin records on (time_stamp, maturity_code).
func (s *Store) SaveB3Futures(ctx context.Context, recs []b3.Record) (uuid.UUID, error) {
	batch := uuid.New()
	if len(recs) == 0 {
		return batch, nil
	}
	rows := make([]B3Future, len(recs))
	for i, r := range recs {
		rows[i] = b3Future(r, batch)
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "time_stamp"}, {Name: "maturity_code"}},
		UpdateAll: true,
	}).CreateInBatches(rows, batchSize).Error
	if err != nil {
		return uuid.Nil, errs.Wrap(errs.Inconsistent, "store.SaveB3Futures", len(recs), err)
	}
	s.log.Info("saved B3 futures", "rows", len(recs), "batch", batch)
	return batch, nil
}

// LoadB3Futures reads the bulletin of one trade date, ordered by maturity code.
func (s *Store) LoadB3Futures(ctx context.Context, day time.Time) ([]b3.Record, error) {
	var rows []B3Future
	err := s.db.WithContext(ctx).
		Where("time_stamp = ?", utils.Truncate(day).Format(utils.DateLayout)).
		Order("maturity_code").
		Find(&rows).Error
	if err != nil {
		return nil, errs.Wrap(errs.Inconsistent, "store.LoadB3Futures", day, err)
	}
	out := make([]b3.Record, len(rows))
	for i, r := range rows {
		out[i] = r.record()
	}
	return out, nil
}
