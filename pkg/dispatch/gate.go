package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dailybrief/pkg/domain"
)

// Store persists dispatch records across process invocations.
// Get returns (nil, nil) when no record exists for the key.
type Store interface {
	Get(ctx context.Context, key string) (*domain.DispatchRecord, error)
	Put(ctx context.Context, record domain.DispatchRecord) error
	Close(ctx context.Context) error
}

// Gate decides whether an artifact should be sent now.
//
// ShouldSend and RecordSent for the same key execute under a per-key lock
// held by the caller via Locked, guaranteeing at most one successful send
// per key per cadence window even when two triggers race.
type Gate struct {
	store Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewGate creates a gate backed by the given store
func NewGate(store Store) *Gate {
	return &Gate{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

// Locked runs fn while holding the lock for key, making the enclosed
// check-then-record a single critical section.
func (g *Gate) Locked(key string, fn func() error) error {
	lock := g.keyLock(key)
	lock.Lock()
	defer lock.Unlock()
	return fn()
}

// ShouldSend reports whether a request should be delivered now.
// On-demand requests are always sendable: each explicit command is assumed
// intentional. Cadence requests are suppressed when the last send for the
// key falls on the same calendar day as now.
func (g *Gate) ShouldSend(ctx context.Context, req domain.RequestDescriptor, now time.Time) (bool, error) {
	if !req.Cadence {
		return true, nil
	}

	record, err := g.store.Get(ctx, req.Key())
	if err != nil {
		return false, fmt.Errorf("read dispatch record %q: %w", req.Key(), err)
	}
	if record == nil {
		return true, nil
	}
	return !sameDay(record.LastSentAt, now), nil
}

// RecordSent overwrites the record for the key with the send timestamp.
// Last-write-wins, no history retained. Called only after a successful
// delivery; failed runs never write.
func (g *Gate) RecordSent(ctx context.Context, req domain.RequestDescriptor, now time.Time) error {
	record := domain.DispatchRecord{
		RequestKey: req.Key(),
		LastSentAt: now,
	}
	if err := g.store.Put(ctx, record); err != nil {
		return fmt.Errorf("write dispatch record %q: %w", req.Key(), err)
	}
	return nil
}

// keyLock returns the mutex for a request key, creating it on first use
func (g *Gate) keyLock(key string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	lock, ok := g.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[key] = lock
	}
	return lock
}

// sameDay reports whether a and b fall on the same calendar day in the
// local time zone. The operator and the cadence live in local time, so the
// dedup window is a local-day notion.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}
