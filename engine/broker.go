// Package engine contains the playback transport and the editing model of
// beatroll, communicating through a message broker so that the two never
// share mutable state.
package engine

import (
	"time"
)

type (
	// Broker is the centralized message broker between the editing model and
	// the player. It is many-to-one communication, implemented with one
	// channel for each recipient.
	//
	// For closing the player goroutine there are two channels: ClosePlayer
	// has a capacity of 1, so a close request (struct{}{}) can always be
	// sent without blocking; if the channel is already full, someone else
	// has already requested the closure and dropping the message is fine.
	// FinishedPlayer is never sent to, only closed, so "<-FinishedPlayer"
	// waits until the player has cleaned up; combine with TimeoutReceive to
	// avoid deadlocks.
	Broker struct {
		ToPlayer chan any
		ToModel  chan MsgToModel

		ClosePlayer    chan struct{}
		FinishedPlayer chan struct{}
	}

	// MsgToModel carries the player state published on every tick. The
	// frequently sent fields are not boxed to avoid allocations;
	// infrequent data (errors, loaded songs) travels boxed in Data.
	MsgToModel struct {
		Position float64
		State    State
		Data     any
	}
)

func NewBroker() *Broker {
	return &Broker{
		ToPlayer:       make(chan any, 1024),
		ToModel:        make(chan MsgToModel, 1024),
		ClosePlayer:    make(chan struct{}, 1),
		FinishedPlayer: make(chan struct{}),
	}
}

// TrySend is a helper function to send a value to a channel if it is not
// full. It is guaranteed to be non-blocking. Returns true if the value was
// sent, false otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive is a helper function to block until a value is received
// from a channel, or timing out after t. ok will be false if the timeout
// occurred or if the channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
