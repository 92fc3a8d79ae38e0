package lockstep

import (
	"context"
	"time"
)

// DriverMember is a driving captor bound to its output sink for use in
// a Group. Build one with Drive.
type DriverMember[S any] interface {
	lockMember()
	unlockMember()
	signalMember()
	interruptMember()
	interruptedMember() bool
	wakeMember() <-chan struct{}
	dryDriveLocked() (State, CaptureRange[S])
	captureDriveLocked(r CaptureRange[S])
	abortLocked(s S)
	resetLocked()
}

// FollowerMember is a following captor bound to its output sink for use
// in a Group. Build one with Follow.
type FollowerMember[S any] interface {
	lockMember()
	unlockMember()
	signalMember()
	interruptMember()
	interruptedMember() bool
	wakeMember() <-chan struct{}
	dryFollowLocked(r CaptureRange[S]) State
	captureFollowLocked(r CaptureRange[S])
	abortLocked(s S)
	resetLocked()
}

type driverMember[S any, D Dispatch[S]] struct {
	c    *DriverCaptor[S, D]
	sink Sink[D]
}

// Drive binds a driving captor to the sink its group captures emit to.
func Drive[S any, D Dispatch[S]](c *DriverCaptor[S, D], sink Sink[D]) DriverMember[S] {
	return &driverMember[S, D]{c: c, sink: sink}
}

func (m *driverMember[S, D]) lockMember()              { m.c.lock.Lock() }
func (m *driverMember[S, D]) unlockMember()            { m.c.lock.Unlock() }
func (m *driverMember[S, D]) signalMember()            { m.c.lock.Signal() }
func (m *driverMember[S, D]) interruptMember()         { m.c.lock.Interrupt() }
func (m *driverMember[S, D]) interruptedMember() bool  { return m.c.lock.TakeInterrupt() }
func (m *driverMember[S, D]) wakeMember() <-chan struct{} { return m.c.lock.Wake() }

func (m *driverMember[S, D]) dryDriveLocked() (State, CaptureRange[S]) {
	return m.c.policy.DryCapture(m.c.queue)
}

func (m *driverMember[S, D]) captureDriveLocked(r CaptureRange[S]) {
	m.c.policy.Capture(m.c.queue, m.sink, r)
}

func (m *driverMember[S, D]) abortLocked(s S) { m.c.policy.Abort(m.c.queue, s) }

func (m *driverMember[S, D]) resetLocked() {
	m.c.queue.Clear()
	m.c.policy.Reset()
}

type followerMember[S any, D Dispatch[S]] struct {
	c    *FollowerCaptor[S, D]
	sink Sink[D]
}

// Follow binds a following captor to the sink its group captures emit to.
func Follow[S any, D Dispatch[S]](c *FollowerCaptor[S, D], sink Sink[D]) FollowerMember[S] {
	return &followerMember[S, D]{c: c, sink: sink}
}

func (m *followerMember[S, D]) lockMember()              { m.c.lock.Lock() }
func (m *followerMember[S, D]) unlockMember()            { m.c.lock.Unlock() }
func (m *followerMember[S, D]) signalMember()            { m.c.lock.Signal() }
func (m *followerMember[S, D]) interruptMember()         { m.c.lock.Interrupt() }
func (m *followerMember[S, D]) interruptedMember() bool  { return m.c.lock.TakeInterrupt() }
func (m *followerMember[S, D]) wakeMember() <-chan struct{} { return m.c.lock.Wake() }

func (m *followerMember[S, D]) dryFollowLocked(r CaptureRange[S]) State {
	return m.c.policy.DryCapture(m.c.queue, r)
}

func (m *followerMember[S, D]) captureFollowLocked(r CaptureRange[S]) {
	m.c.policy.Capture(m.c.queue, m.sink, r)
}

func (m *followerMember[S, D]) abortLocked(s S) { m.c.policy.Abort(m.c.queue, s) }

func (m *followerMember[S, D]) resetLocked() {
	m.c.queue.Clear()
	m.c.policy.Reset()
}

// Group synchronizes one driving captor with any number of following
// captors. A capture attempt either emits one coherent frame across all
// members or leaves every queue untouched (modulo abort pruning).
//
// All member locks are held for the duration of an attempt, driver
// first then followers in registration order. Producers injecting into
// individual captors therefore never observe a half-applied frame.
//
// A Group supports one blocked waiter at a time. Concurrent Capture
// calls are safe but CaptureUntil must not be invoked from two
// goroutines at once.
type Group[S any] struct {
	driver    DriverMember[S]
	followers []FollowerMember[S]
}

// NewGroup assembles a capture group from a driving member and its
// followers.
func NewGroup[S any](driver DriverMember[S], followers ...FollowerMember[S]) *Group[S] {
	return &Group[S]{driver: driver, followers: followers}
}

func (g *Group[S]) lockAll() {
	g.driver.lockMember()
	for _, f := range g.followers {
		f.lockMember()
	}
}

func (g *Group[S]) unlockAll() {
	for i := len(g.followers) - 1; i >= 0; i-- {
		g.followers[i].unlockMember()
	}
	g.driver.unlockMember()
}

func (g *Group[S]) signalAll() {
	g.driver.signalMember()
	for _, f := range g.followers {
		f.signalMember()
	}
}

// Capture attempts one synchronized capture.
//
// The driver dry-runs first; if it is not primed its state is the
// group's state. Otherwise every follower dry-runs against the driver's
// range and the results reduce with abort dominating retry dominating
// primed. Only a unanimous StatePrimed proceeds to extraction. On
// StateAborted every member prunes up to the range's upper bound and
// the group resumes from the next available range.
//
// The returned range is meaningful for StatePrimed and StateAborted.
func (g *Group[S]) Capture() (State, CaptureRange[S]) {
	g.lockAll()
	st, r := g.captureLocked()
	g.unlockAll()
	if st == StateAborted {
		g.signalAll()
	}
	return st, r
}

func (g *Group[S]) captureLocked() (State, CaptureRange[S]) {
	st, r := g.driver.dryDriveLocked()
	if st != StatePrimed {
		return st, r
	}
	verdict := StatePrimed
	for _, f := range g.followers {
		switch f.dryFollowLocked(r) {
		case StateAborted:
			verdict = StateAborted
		case StateRetry:
			if verdict != StateAborted {
				verdict = StateRetry
			}
		}
	}
	switch verdict {
	case StatePrimed:
		g.driver.captureDriveLocked(r)
		for _, f := range g.followers {
			f.captureFollowLocked(r)
		}
	case StateAborted:
		g.driver.abortLocked(r.Upper)
		for _, f := range g.followers {
			f.abortLocked(r.Upper)
		}
	}
	return verdict, r
}

// DryCapture evaluates a synchronized capture without extracting or
// pruning anything. StateAborted here predicts what Capture would do;
// no queue is modified.
func (g *Group[S]) DryCapture() (State, CaptureRange[S]) {
	g.lockAll()
	defer g.unlockAll()
	st, r := g.driver.dryDriveLocked()
	if st != StatePrimed {
		return st, r
	}
	verdict := StatePrimed
	for _, f := range g.followers {
		switch f.dryFollowLocked(r) {
		case StateAborted:
			verdict = StateAborted
		case StateRetry:
			if verdict != StateAborted {
				verdict = StateRetry
			}
		}
	}
	return verdict, r
}

// CaptureUntil blocks until a capture attempt resolves to a terminal
// state or the deadline passes. StateRetry outcomes wait for member
// wakeups and re-evaluate; an Abort or Reset on any member interrupts
// the wait with StateAborted. A zero deadline waits indefinitely.
//
// Members built on NoLock never signal, so an all-NoLock group degrades
// to a single evaluation.
func (g *Group[S]) CaptureUntil(ctx context.Context, deadline time.Time) (State, CaptureRange[S]) {
	wake := make(chan struct{}, 1)
	stop := make(chan struct{})
	defer close(stop)
	forward := func(ch <-chan struct{}) {
		if ch == nil {
			return
		}
		go func() {
			for {
				select {
				case <-ch:
					select {
					case wake <- struct{}{}:
					default:
					}
				case <-stop:
					return
				}
			}
		}()
	}
	forward(g.driver.wakeMember())
	for _, f := range g.followers {
		forward(f.wakeMember())
	}

	var expire <-chan time.Time
	if !deadline.IsZero() {
		timer := time.NewTimer(time.Until(deadline))
		defer timer.Stop()
		expire = timer.C
	}

	signalless := g.driver.wakeMember() == nil
	for _, f := range g.followers {
		if f.wakeMember() != nil {
			signalless = false
		}
	}

	for {
		if g.takeInterrupt() {
			var r CaptureRange[S]
			return StateAborted, r
		}
		st, r := g.Capture()
		if st != StateRetry || signalless {
			return st, r
		}
		select {
		case <-wake:
		case <-expire:
			return StateTimedOut, CaptureRange[S]{}
		case <-ctx.Done():
			return StateAborted, CaptureRange[S]{}
		}
	}
}

func (g *Group[S]) takeInterrupt() bool {
	hit := g.driver.interruptedMember()
	for _, f := range g.followers {
		if f.interruptedMember() {
			hit = true
		}
	}
	return hit
}

// Abort advances every member past s, dropping elements no future range
// can reach, and interrupts any blocked waiter.
func (g *Group[S]) Abort(s S) {
	g.lockAll()
	g.driver.abortLocked(s)
	for _, f := range g.followers {
		f.abortLocked(s)
	}
	g.unlockAll()
	g.interruptAll()
}

// Reset clears every member's queue and policy state and interrupts any
// blocked waiter.
func (g *Group[S]) Reset() {
	g.lockAll()
	g.driver.resetLocked()
	for _, f := range g.followers {
		f.resetLocked()
	}
	g.unlockAll()
	g.interruptAll()
}

func (g *Group[S]) interruptAll() {
	g.driver.interruptMember()
	g.driver.signalMember()
	for _, f := range g.followers {
		f.interruptMember()
		f.signalMember()
	}
}
