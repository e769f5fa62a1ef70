package entity

import "time"

// UsageKind distinguishes backend calls in the usage log.
type UsageKind string

const (
	UsageSuggestion  UsageKind = "suggestion"
	UsageEnhancement UsageKind = "enhancement"
)

// UsageRecord is one backend call. The prompt itself is never stored, only a
// fingerprint and its length.
type UsageRecord struct {
	ID          int64
	Kind        UsageKind
	Fingerprint string
	InputChars  int
	Success     bool
	Latency     time.Duration
	CreatedAt   time.Time
}

// UsageSummary aggregates usage records of one kind.
type UsageSummary struct {
	Kind         UsageKind
	Total        int
	Succeeded    int
	AvgLatency   time.Duration
	LastActivity time.Time
}

// SuccessRate returns the fraction of successful calls, 0 when empty.
func (s UsageSummary) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Total)
}
