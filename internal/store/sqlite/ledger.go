package sqlite

import (
	"context"

	"swingflow/internal/store/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LedgerRepo struct {
	db *gorm.DB
}

func NewLedgerRepo(db *gorm.DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

// Exists checks the dedupe key with exact stored price equality. Threshold
// tolerance applies to matching live prices against ladder values, not to
// replay detection: a redelivered event carries the identical payload, so
// its price round-trips bit-identically.
func (r *LedgerRepo) Exists(ctx context.Context, tradeID int64, eventType string, price float64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.LedgerEventModel{}).
		Where("trade_id = ? AND event_type = ? AND price = ?", tradeID, eventType, price).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Append inserts one ledger row, relying on the unique dedupe index rather
// than a read-then-write check. A conflicting insert is skipped and
// reported as false.
func (r *LedgerRepo) Append(ctx context.Context, rec *model.LedgerEventModel) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *LedgerRepo) ListByTrade(ctx context.Context, tradeID int64, limit int) ([]model.LedgerEventModel, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []model.LedgerEventModel
	err := r.db.WithContext(ctx).
		Where("trade_id = ?", tradeID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
