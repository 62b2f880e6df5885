// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"sync/atomic"
)

type RecordLimiter struct {
	TryAcquireFn func(records int) bool
	ReleaseFn    func(call uint64, records int)
	CapacityFn   func() int
	releaseCalls uint64
}

func (m *RecordLimiter) TryAcquire(records int) bool {
	return m.TryAcquireFn(records)
}

func (m *RecordLimiter) Release(records int) {
	atomic.AddUint64(&m.releaseCalls, 1)
	m.ReleaseFn(m.GetReleaseCalls(), records)
}

func (m *RecordLimiter) Capacity() int {
	return m.CapacityFn()
}

func (m *RecordLimiter) GetReleaseCalls() uint64 {
	return atomic.LoadUint64(&m.releaseCalls)
}
