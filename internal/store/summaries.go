package store

import (
	"context"

	"github.com/dxpool/hns-backend/internal/model"
)

// SummaryStore is the Summary collection's contract (spec.md §3).
type SummaryStore interface {
	// IncrementSummary increment-upserts the day-bucket record at
	// dayTime, adding delta to each field (spec.md §4.2 step 6).
	IncrementSummary(ctx context.Context, dayTime int64, delta model.Summary) error
	// PutSummary replaces the day-bucket record at s.Time wholesale, used
	// by rollback's boundary-day recomputation (spec.md §4.2 rollback).
	PutSummary(ctx context.Context, s model.Summary) error
	// GetSummary returns the day-bucket record at dayTime, or nil.
	GetSummary(ctx context.Context, dayTime int64) (*model.Summary, error)
	// GetLatestSummaryBefore returns the most recent day-bucket record
	// with Time < dayTime, or nil if none (spec.md §4.2 step 6, cumulative
	// seeding for a newly-opened day).
	GetLatestSummaryBefore(ctx context.Context, dayTime int64) (*model.Summary, error)
	// ListSummariesInRange returns day-bucket records with
	// Time in [start, end], ascending by Time (spec.md §4.3 getSeries).
	ListSummariesInRange(ctx context.Context, start, end int64) ([]model.Summary, error)
	// DeleteSummariesAfter deletes every day-bucket record with
	// Time > dayTime (spec.md §4.2 rollback).
	DeleteSummariesAfter(ctx context.Context, dayTime int64) error
}
