package usecase

import (
	"context"
	"encoding/hex"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/blake2b"

	"github.com/bnema/gregify/internal/domain/entity"
	"github.com/bnema/gregify/internal/domain/repository"
	"github.com/bnema/gregify/internal/logging"
)

// RecordUsageUseCase keeps the usage log. Prompts are reduced to a blake2b
// fingerprint before they reach storage.
type RecordUsageUseCase struct {
	repo repository.UsageRepository
	now  func() time.Time
}

// NewRecordUsageUseCase creates the usage recorder. A nil repo disables it.
func NewRecordUsageUseCase(repo repository.UsageRepository) *RecordUsageUseCase {
	return &RecordUsageUseCase{repo: repo, now: time.Now}
}

// Fingerprint returns the hex blake2b-256 digest of prompt.
func Fingerprint(prompt string) string {
	sum := blake2b.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// Record stores one backend call. Storage errors are logged, never returned.
func (uc *RecordUsageUseCase) Record(ctx context.Context, kind entity.UsageKind, prompt string, success bool, latency time.Duration) {
	if uc == nil || uc.repo == nil {
		return
	}
	rec := &entity.UsageRecord{
		Kind:        kind,
		Fingerprint: Fingerprint(prompt),
		InputChars:  utf8.RuneCountInString(prompt),
		Success:     success,
		Latency:     latency,
		CreatedAt:   uc.now(),
	}
	if err := uc.repo.Record(ctx, rec); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("kind", string(kind)).Msg("failed to record usage")
	}
}

// Recent returns the latest records.
func (uc *RecordUsageUseCase) Recent(ctx context.Context, limit int) ([]*entity.UsageRecord, error) {
	if uc == nil || uc.repo == nil {
		return nil, nil
	}
	return uc.repo.Recent(ctx, limit)
}

// Summaries aggregates records newer than since.
func (uc *RecordUsageUseCase) Summaries(ctx context.Context, since time.Time) ([]entity.UsageSummary, error) {
	if uc == nil || uc.repo == nil {
		return nil, nil
	}
	return uc.repo.Summaries(ctx, since)
}
