package chat

import "errors"

// None of these close the connection that produced them.
var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrInvalidEvent     = errors.New("invalid event")
	ErrUnsupportedEvent = errors.New("unsupported event type")
	ErrUnknownAuthor    = errors.New("unknown author")
	ErrStoreUnavailable = errors.New("message store unavailable")
	ErrTransportClosed  = errors.New("transport closed")
)
