package sqlite

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/gregify/internal/application/port"
	"github.com/bnema/gregify/internal/domain/entity"
	"github.com/bnema/gregify/internal/domain/repository"
)

// LazyUsageRepository wraps the usage repository with lazy database
// initialization.
type LazyUsageRepository struct {
	provider port.DatabaseProvider
	repo     repository.UsageRepository
	once     sync.Once
	initErr  error
}

// NewLazyUsageRepository creates a lazy-loading usage repository.
func NewLazyUsageRepository(provider port.DatabaseProvider) repository.UsageRepository {
	return &LazyUsageRepository{provider: provider}
}

func (r *LazyUsageRepository) init(ctx context.Context) error {
	r.once.Do(func() {
		db, err := r.provider.DB(ctx)
		if err != nil {
			r.initErr = err
			return
		}
		r.repo = NewUsageRepository(db)
	})
	return r.initErr
}

func (r *LazyUsageRepository) Record(ctx context.Context, rec *entity.UsageRecord) error {
	if err := r.init(ctx); err != nil {
		return err
	}
	return r.repo.Record(ctx, rec)
}

func (r *LazyUsageRepository) Recent(ctx context.Context, limit int) ([]*entity.UsageRecord, error) {
	if err := r.init(ctx); err != nil {
		return nil, err
	}
	return r.repo.Recent(ctx, limit)
}

func (r *LazyUsageRepository) Summaries(ctx context.Context, since time.Time) ([]entity.UsageSummary, error) {
	if err := r.init(ctx); err != nil {
		return nil, err
	}
	return r.repo.Summaries(ctx, since)
}
