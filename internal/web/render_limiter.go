package web

// render_limiter.go bounds concurrent chart rendering.
//
// The limiter uses a semaphore so that at most a configured number of SVG
// charts are drawn at once. When all slots are occupied, new requests wait
// up to maxWait before failing with ErrTooManyRenders.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyRenders is returned when every render slot stays busy for the
// whole wait period.
var ErrTooManyRenders = errors.New("too many concurrent renders, please try again later")

const (
	defaultMaxConcurrentRenders = 8
	defaultMaxRenderWait        = 5 * time.Second
)

// RenderLimiter limits parallel chart rendering.
type RenderLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewRenderLimiter creates a limiter allowing maxConcurrent renders at once.
// Non-positive arguments fall back to the defaults.
func NewRenderLimiter(maxConcurrent int, maxWait time.Duration) *RenderLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentRenders
	}
	if maxWait <= 0 {
		maxWait = defaultMaxRenderWait
	}
	return &RenderLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire waits for a render slot. The caller must Release it.
func (l *RenderLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyRenders
	}
}

// Release frees a slot taken by Acquire.
func (l *RenderLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of renders in progress.
func (l *RenderLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// Available returns the number of free slots.
func (l *RenderLimiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// WaitForDrain blocks until no render is in progress or ctx is done.
func (l *RenderLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RenderLimiterStatus is a snapshot of the limiter for health checks.
type RenderLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the limiter's current state.
func (l *RenderLimiter) Status() RenderLimiterStatus {
	return RenderLimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: cap(l.semaphore),
	}
}
