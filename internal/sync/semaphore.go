// SPDX-License-Identifier: Apache-2.0

package sync

import (
	"golang.org/x/sync/semaphore"
)

// RecordLimiter bounds the number of records being masked at the same time
// across concurrent callers.
type RecordLimiter interface {
	TryAcquire(records int) bool
	Release(records int)
	Capacity() int
}

type WeightedRecordLimiter struct {
	sem      *semaphore.Weighted
	capacity int
}

func NewRecordLimiter(capacity int) *WeightedRecordLimiter {
	return &WeightedRecordLimiter{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: capacity,
	}
}

// TryAcquire reserves room for the given number of records without blocking.
// A request larger than the capacity can never be satisfied and is refused.
func (l *WeightedRecordLimiter) TryAcquire(records int) bool {
	if records < 0 || records > l.capacity {
		return false
	}
	return l.sem.TryAcquire(int64(records))
}

func (l *WeightedRecordLimiter) Release(records int) {
	l.sem.Release(int64(records))
}

func (l *WeightedRecordLimiter) Capacity() int {
	return l.capacity
}
