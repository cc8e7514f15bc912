package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"swingflow/internal/store"
	"swingflow/internal/store/model"

	"gorm.io/gorm"
)

type TradeRepo struct {
	db *gorm.DB
}

func NewTradeRepo(db *gorm.DB) *TradeRepo {
	return &TradeRepo{db: db}
}

// Column names are selected through these fixed tables, never built from
// level numbers at runtime. Arity mismatches fail loudly.
var (
	entryFilledColumns    = [model.LadderSize]string{"entry_1_filled_at", "entry_2_filled_at", "entry_3_filled_at"}
	entryColumns          = [model.LadderSize]string{"entry_1", "entry_2", "entry_3"}
	profitColumns         = [model.LadderSize]string{"profit_1", "profit_2", "profit_3"}
	profitAchievedColumns = [model.LadderSize]string{"profit_1_achieved_at", "profit_2_achieved_at", "profit_3_achieved_at"}
)

func ladderColumn(table [model.LadderSize]string, level int) (string, error) {
	if level < 1 || level > model.LadderSize {
		return "", fmt.Errorf("level %d outside ladder arity %d", level, model.LadderSize)
	}
	return table[level-1], nil
}

func (r *TradeRepo) Find(ctx context.Context, id int64) (*model.TradeModel, error) {
	var trade model.TradeModel
	err := r.db.WithContext(ctx).First(&trade, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("trade %d: %w", id, store.ErrTradeNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &trade, nil
}

func (r *TradeRepo) Update(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now().Unix()
	return r.db.WithContext(ctx).
		Model(&model.TradeModel{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *TradeRepo) MarkEntryFilled(ctx context.Context, id int64, level int, at time.Time) (bool, error) {
	col, err := ladderColumn(entryFilledColumns, level)
	if err != nil {
		return false, err
	}
	return r.guardedSet(ctx, id, col, at)
}

func (r *TradeRepo) MarkProfitAchieved(ctx context.Context, id int64, level int, at time.Time) (bool, error) {
	col, err := ladderColumn(profitAchievedColumns, level)
	if err != nil {
		return false, err
	}
	return r.guardedSet(ctx, id, col, at)
}

// guardedSet is the compare-and-set primitive: write the timestamp only if
// the column is still NULL, and report whether a row changed.
func (r *TradeRepo) guardedSet(ctx context.Context, id int64, col string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.TradeModel{}).
		Where("id = ? AND "+col+" IS NULL", id).
		Updates(map[string]any{col: at, "updated_at": at.Unix()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *TradeRepo) SetEntryLadder(ctx context.Context, id int64, ladder [model.LadderSize]*float64) error {
	fields := make(map[string]any, model.LadderSize+1)
	for i, col := range entryColumns {
		fields[col] = ladder[i]
	}
	return r.Update(ctx, id, fields)
}

func (r *TradeRepo) SetDefaultProfits(ctx context.Context, id int64, p1, p2 float64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.TradeModel{}).
		Where("id = ? AND profit_1 IS NULL AND profit_2 IS NULL", id).
		Updates(map[string]any{
			"profit_1":   p1,
			"profit_2":   p2,
			"updated_at": time.Now().Unix(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *TradeRepo) CloseTrade(ctx context.Context, id int64, outcome, notes string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.TradeModel{}).
		Where("id = ? AND status = ?", id, model.StatusOpen).
		Updates(map[string]any{
			"status":       model.StatusClosed,
			"outcome":      outcome,
			"closed_at":    at,
			"closed_notes": notes,
			"updated_at":   at.Unix(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *TradeRepo) ResetTrade(ctx context.Context, id int64, reason string, at time.Time) error {
	logLine := fmt.Sprintf("RESET: %s on %s\n", reason, at.UTC().Format(time.RFC3339))
	fields := map[string]any{
		"entry_4":           nil,
		"entry_4_filled_at": nil,
		"stop_price":        nil,
		"stop_period":       nil,
		"status":            model.StatusOpen,
		"outcome":           nil,
		"closed_at":         nil,
		"closed_notes":      nil,
		"eligible":          true,
		"entry_log":         gorm.Expr("COALESCE(entry_log, '') || ?", logLine),
		"updated_at":        at.Unix(),
	}
	for i := range entryColumns {
		fields[entryColumns[i]] = nil
		fields[entryFilledColumns[i]] = nil
		fields[profitColumns[i]] = nil
		fields[profitAchievedColumns[i]] = nil
	}
	return r.db.WithContext(ctx).
		Model(&model.TradeModel{}).
		Where("id = ?", id).
		Updates(fields).Error
}
