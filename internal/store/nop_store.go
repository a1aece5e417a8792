package store

import (
	"context"

	"github.com/jserwatka/network/internal/domain"
)

// NopCounterStore always misses. Used when Redis is not configured.
type NopCounterStore struct{}

func (NopCounterStore) GetCounts(context.Context, uint) (*domain.FollowCounts, bool, error) {
	return nil, false, nil
}
func (NopCounterStore) SetCounts(context.Context, uint, domain.FollowCounts) error { return nil }
func (NopCounterStore) Invalidate(context.Context, ...uint) error                  { return nil }
func (NopCounterStore) RecordAccess(context.Context, uint) error                   { return nil }
func (NopCounterStore) GetTopHotKeys(context.Context, int64) ([]uint, error)       { return nil, nil }
func (NopCounterStore) ResetHotKeyScores(context.Context) error                    { return nil }
func (NopCounterStore) Close() error                                               { return nil }

var _ CounterStore = NopCounterStore{}
