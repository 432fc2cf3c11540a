package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rickgao/listing-watch/internal/model"
)

// marketRow is the gorm mapping of the markets table.
type marketRow struct {
	ID          string `gorm:"primaryKey"`
	Exchange    string `gorm:"primaryKey"`
	Base        string
	Quote       string
	IsTrading   bool
	Status      string
	TickSize    decimal.Decimal   `gorm:"type:text"`
	LotStep     decimal.Decimal   `gorm:"type:text"`
	Metadata    map[string]string `gorm:"serializer:json;type:text"`
	FirstSeenAt time.Time
	LastSeenAt  time.Time
}

func (marketRow) TableName() string { return "markets" }

func (r marketRow) toModel() model.MarketRecord {
	return model.MarketRecord{
		ID:          r.ID,
		Exchange:    r.Exchange,
		Base:        r.Base,
		Quote:       r.Quote,
		IsTrading:   r.IsTrading,
		Status:      r.Status,
		TickSize:    r.TickSize,
		LotStep:     r.LotStep,
		Metadata:    r.Metadata,
		FirstSeenAt: r.FirstSeenAt.UTC(),
		LastSeenAt:  r.LastSeenAt.UTC(),
	}
}

func fromModel(rec model.MarketRecord) marketRow {
	return marketRow{
		ID:          rec.ID,
		Exchange:    rec.Exchange,
		Base:        rec.Base,
		Quote:       rec.Quote,
		IsTrading:   rec.IsTrading,
		Status:      rec.Status,
		TickSize:    rec.TickSize,
		LotStep:     rec.LotStep,
		Metadata:    rec.Metadata,
		FirstSeenAt: rec.FirstSeenAt.UTC(),
		LastSeenAt:  rec.LastSeenAt.UTC(),
	}
}

// SQLite is a single-file store for local runs.
type SQLite struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the database file and migrates the schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&marketRow{}); err != nil {
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&marketRow{}).Count(&n).Error; err != nil {
		return 0, &Error{Op: "count", Err: err}
	}
	return n, nil
}

func (s *SQLite) FindOne(ctx context.Context, id, exchange string) (*model.MarketRecord, error) {
	var row marketRow
	err := s.db.WithContext(ctx).Where("id = ? AND exchange = ?", id, exchange).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &Error{Op: "find", Exchange: exchange, MarketID: id, Err: err}
	}
	rec := row.toModel()
	return &rec, nil
}

func (s *SQLite) Upsert(ctx context.Context, rec model.MarketRecord) (model.MarketRecord, error) {
	var stored model.MarketRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing marketRow
		err := tx.Where("id = ? AND exchange = ?", rec.ID, rec.Exchange).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			stored = rec
		case err != nil:
			return err
		default:
			stored = merge(existing.toModel(), rec)
		}
		row := fromModel(stored)
		return tx.Save(&row).Error
	})
	if err != nil {
		return model.MarketRecord{}, &Error{Op: "upsert", Exchange: rec.Exchange, MarketID: rec.ID, Err: err}
	}
	return stored, nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLite) Close() {
	if sqlDB, err := s.db.DB(); err == nil {
		sqlDB.Close()
	}
}
