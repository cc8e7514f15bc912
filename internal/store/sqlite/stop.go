package sqlite

import (
	"context"
	"time"

	"swingflow/internal/store/model"

	"gorm.io/gorm"
)

type StopRepo struct {
	db *gorm.DB
}

func NewStopRepo(db *gorm.DB) *StopRepo {
	return &StopRepo{db: db}
}

func (r *StopRepo) ListByTrade(ctx context.Context, tradeID int64) ([]model.StopModel, error) {
	var stops []model.StopModel
	err := r.db.WithContext(ctx).
		Where("trade_id = ?", tradeID).
		Order("created_at DESC, id DESC").
		Find(&stops).Error
	if err != nil {
		return nil, err
	}
	return stops, nil
}

func (r *StopRepo) Insert(ctx context.Context, stop *model.StopModel) error {
	return r.db.WithContext(ctx).Create(stop).Error
}

func (r *StopRepo) DeleteByType(ctx context.Context, tradeID int64, stopType string) error {
	return r.db.WithContext(ctx).
		Where("trade_id = ? AND stop_type = ?", tradeID, stopType).
		Delete(&model.StopModel{}).Error
}

func (r *StopRepo) DeleteAll(ctx context.Context, tradeID int64) error {
	return r.db.WithContext(ctx).
		Where("trade_id = ?", tradeID).
		Delete(&model.StopModel{}).Error
}

func (r *StopRepo) MarkTriggered(ctx context.Context, id int64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.StopModel{}).
		Where("id = ? AND triggered_at IS NULL", id).
		Update("triggered_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
