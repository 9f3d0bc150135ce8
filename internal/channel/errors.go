package channel

import "errors"

var (
	// ErrNoChannel means an outbound message named a channel ID nothing
	// is registered under.
	ErrNoChannel = errors.New("channel: unknown channel")

	// ErrDuplicateChannel means two modules tried to register the same ID.
	ErrDuplicateChannel = errors.New("channel: duplicate channel name")

	// ErrNoInbox means a channel received an event before the pipeline
	// wired its inbox.
	ErrNoInbox = errors.New("channel: inbox not set")

	// ErrDenied means the allow-list blocked the event's sender.
	ErrDenied = errors.New("channel: sender not allowed")
)
