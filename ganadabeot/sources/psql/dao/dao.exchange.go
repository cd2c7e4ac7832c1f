// ganadabeot/sources/psql/dao/dao.exchange.go
package dao

import (
	"context"

	"ganadabeot/ganadabeot/sources/psql/models"

	"gorm.io/gorm"
)

type ExchangeDAO struct {
	DB *gorm.DB
}

func NewExchangeDAO(db *gorm.DB) *ExchangeDAO {
	return &ExchangeDAO{DB: db}
}

// Record inserts one exchange row.
func (dao *ExchangeDAO) Record(ctx context.Context, ex *models.Exchange) error {
	return dao.DB.WithContext(ctx).Create(ex).Error
}

// ListRecent returns up to limit exchanges, newest first.
func (dao *ExchangeDAO) ListRecent(ctx context.Context, limit int) ([]models.Exchange, error) {
	var out []models.Exchange
	err := dao.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountByOutcome groups exchanges of a session by outcome.
func (dao *ExchangeDAO) CountByOutcome(ctx context.Context, sessionID string) (map[string]int64, error) {
	var rows []struct {
		Outcome string
		Total   int64
	}
	err := dao.DB.WithContext(ctx).
		Model(&models.Exchange{}).
		Select("outcome, COUNT(*) AS total").
		Where("session_id = ?", sessionID).
		Group("outcome").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Outcome] = r.Total
	}
	return counts, nil
}
