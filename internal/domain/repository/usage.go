package repository

import (
	"context"
	"time"

	"github.com/bnema/gregify/internal/domain/entity"
)

// UsageRepository persists backend call records.
type UsageRepository interface {
	Record(ctx context.Context, record *entity.UsageRecord) error
	Recent(ctx context.Context, limit int) ([]*entity.UsageRecord, error)
	Summaries(ctx context.Context, since time.Time) ([]entity.UsageSummary, error)
}
