package tui

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// StateQueue holds the states waiting to be executed plus the callback
// slot: the prompt that is currently waiting for input and that is shown
// again after an interruption. It is safe for concurrent use; the network
// goroutine pushes states while the orchestrator pops them.
type StateQueue struct {
	mu          sync.Mutex
	pending     []UIState
	callback    UIState
	hasCallback bool

	// wake holds at most one token, dropped in whenever a state is pushed.
	wake      chan struct{}
	onAdvance func()
}

// NewStateQueue creates an empty queue. onAdvance, if not nil, runs every
// time Next hands out a state.
func NewStateQueue(onAdvance func()) *StateQueue {
	return &StateQueue{
		wake:      make(chan struct{}, 1),
		onAdvance: onAdvance,
	}
}

func (q *StateQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// PushFront queues a state ahead of everything already queued.
func (q *StateQueue) PushFront(s UIState) {
	q.mu.Lock()
	q.pushFrontLocked(s)
	q.mu.Unlock()
	log.Debug().Stringer("state", s).Msg("push-front")
	q.signal()
}

func (q *StateQueue) pushFrontLocked(s UIState) {
	q.pending = append(q.pending, 0)
	copy(q.pending[1:], q.pending)
	q.pending[0] = s
}

// PushBack queues a state after everything already queued.
func (q *StateQueue) PushBack(s UIState) {
	q.mu.Lock()
	q.pending = append(q.pending, s)
	q.mu.Unlock()
	log.Debug().Stringer("state", s).Msg("push-back")
	q.signal()
}

// Clear drops every queued state. It does not affect the state that is
// currently executing, nor the callback slot.
func (q *StateQueue) Clear() {
	q.mu.Lock()
	q.pending = nil
	q.mu.Unlock()
	log.Debug().Msg("clear-states")
}

// Len returns the number of queued states.
func (q *StateQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *StateQueue) pop() (UIState, bool) {
	q.mu.Lock()
	if len(q.pending) == 0 {
		q.mu.Unlock()
		return Idle, false
	}
	s := q.pending[0]
	q.pending = q.pending[1:]
	q.mu.Unlock()
	if q.onAdvance != nil {
		q.onAdvance()
	}
	return s, true
}

// Next removes and returns the front state. If the queue stays empty for
// timeout it returns Idle instead. A push from another goroutine ends the
// wait early.
func (q *StateQueue) Next(timeout time.Duration) UIState {
	if s, ok := q.pop(); ok {
		return s
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-q.wake:
			if s, ok := q.pop(); ok {
				return s
			}
		case <-timer.C:
			if s, ok := q.pop(); ok {
				return s
			}
			return Idle
		}
	}
}

// SetCallback records the state that is waiting for input.
func (q *StateQueue) SetCallback(s UIState) {
	q.mu.Lock()
	q.callback = s
	q.hasCallback = true
	q.mu.Unlock()
	log.Debug().Stringer("state", s).Msg("set-callback")
}

// ClearCallback empties the callback slot without queueing anything.
func (q *StateQueue) ClearCallback() {
	q.mu.Lock()
	q.hasCallback = false
	q.mu.Unlock()
}

// Callback returns the state waiting for input, if any.
func (q *StateQueue) Callback() (UIState, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.callback, q.hasCallback
}

// ReturnToCallback queues the waiting prompt at the front so it is shown
// again, and empties the slot. It does nothing if no prompt is waiting.
func (q *StateQueue) ReturnToCallback() {
	q.mu.Lock()
	if !q.hasCallback {
		q.mu.Unlock()
		return
	}
	s := q.callback
	q.hasCallback = false
	q.pushFrontLocked(s)
	q.mu.Unlock()
	log.Debug().Stringer("state", s).Msg("return-to-callback")
	q.signal()
}
