package eventstream

import "errors"

var (
	// ErrNilTurnEvent is returned when a publisher is handed a nil event.
	ErrNilTurnEvent = errors.New("nil turn event")

	// ErrPublisherClosed is returned by PublishTurn after Close.
	ErrPublisherClosed = errors.New("publisher closed")
)
