package pipeline

import "time"

// Transition describes one state change of a session.
type Transition struct {
	SessionID string
	From      State
	To        State
	// Elapsed is the time spent in From.
	Elapsed time.Duration
	Err     error
}

// Observer is notified of every transition. It is called with the session
// lock held and must not call back into the session.
type Observer interface {
	OnTransition(t Transition)
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(t Transition)

func (f ObserverFunc) OnTransition(t Transition) { f(t) }
