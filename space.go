package orca

import (
	"errors"
	"sync"
	"time"
)

// ErrSpaceClosed is delivered to pending futures when their target is
// closed before the result arrives.
var ErrSpaceClosed = errors.New("result space closed")

// resultValue wraps a resolved sample result with its metadata.
type resultValue struct {
	Result    *SampleResult
	Error     error
	CreatedAt time.Time
	TTL       time.Duration
}

/*
resultSpace stores resolved sampling results and hands out one-shot
channels for callers awaiting them. A value stored before anyone awaits it
is retained (bounded by its TTL) so late collectors still see it; a caller
awaiting before the value lands is parked on a buffered channel that the
store side fulfils exactly once.
*/
type resultSpace struct {
	mu      sync.Mutex
	values  map[string]resultValue
	waiting map[string][]chan resultValue
	closed  bool
	quit    chan struct{}
	wg      sync.WaitGroup
}

func newResultSpace() *resultSpace {
	rs := &resultSpace{
		values:  make(map[string]resultValue),
		waiting: make(map[string][]chan resultValue),
		quit:    make(chan struct{}),
	}

	rs.wg.Add(1)
	go func() {
		defer rs.wg.Done()
		rs.cleanup()
	}()

	return rs
}

// Store records a result and fulfils any waiting channels.
func (rs *resultSpace) Store(id string, result *SampleResult, err error, ttl time.Duration) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.closed {
		return
	}

	rv := resultValue{
		Result:    result,
		Error:     err,
		CreatedAt: time.Now(),
		TTL:       ttl,
	}
	rs.values[id] = rv

	if channels, ok := rs.waiting[id]; ok {
		for _, ch := range channels {
			select {
			case ch <- rv:
				close(ch)
			default:
				logger.Warnf("dropping result for %s: waiting channel full or closed", id)
			}
		}
		delete(rs.waiting, id)
	}
}

// Await returns a channel that receives the value for id once it is
// available. The channel is buffered and closed after the single send.
func (rs *resultSpace) Await(id string) chan resultValue {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	ch := make(chan resultValue, 1)

	if rs.closed {
		ch <- resultValue{Error: ErrSpaceClosed, CreatedAt: time.Now()}
		close(ch)
		return ch
	}

	if rv, ok := rs.values[id]; ok {
		ch <- rv
		close(ch)
		return ch
	}

	rs.waiting[id] = append(rs.waiting[id], ch)
	return ch
}

// Resolved reports whether a value for id has already been stored.
func (rs *resultSpace) Resolved(id string) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	_, ok := rs.values[id]
	return ok
}

func (rs *resultSpace) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rs.quit:
			return
		case <-ticker.C:
			rs.sweep(time.Now())
		}
	}
}

// sweep drops values whose retention TTL has lapsed. A zero TTL means
// the value is retained until the space is closed.
func (rs *resultSpace) sweep(now time.Time) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	for id, rv := range rs.values {
		if rv.TTL > 0 && now.Sub(rv.CreatedAt) > rv.TTL {
			delete(rs.values, id)
		}
	}
}

// Close fails all pending waiters and stops the cleanup loop.
func (rs *resultSpace) Close() {
	rs.mu.Lock()
	if rs.closed {
		rs.mu.Unlock()
		return
	}
	rs.closed = true
	for id, channels := range rs.waiting {
		for _, ch := range channels {
			select {
			case ch <- resultValue{Error: ErrSpaceClosed, CreatedAt: time.Now()}:
				close(ch)
			default:
			}
		}
		delete(rs.waiting, id)
	}
	rs.mu.Unlock()

	close(rs.quit)
	rs.wg.Wait()
}
