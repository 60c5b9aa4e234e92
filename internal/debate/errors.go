package debate

import "errors"

// Error kinds. Every error returned by the coordinator matches exactly one of
// these with errors.Is.
var (
	ErrValidation = errors.New("invalid input")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
)

// Error is a user-facing failure of a given kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

var (
	ErrEmptyTitle     = &Error{Kind: ErrValidation, Msg: "Title is required."}
	ErrEmptyUsername  = &Error{Kind: ErrValidation, Msg: "Username is required."}
	ErrInvalidSide    = &Error{Kind: ErrValidation, Msg: "Invalid side. Choose 'for' or 'against'."}
	ErrEmptyMessage   = &Error{Kind: ErrValidation, Msg: "Message is empty."}
	ErrMessageTooLong = &Error{Kind: ErrValidation, Msg: "Message is too long."}

	ErrTopicNotFound = &Error{Kind: ErrNotFound, Msg: "Topic not found."}

	ErrOppositeSide     = &Error{Kind: ErrConflict, Msg: "You already joined the other side. Leave it first."}
	ErrAlreadyConnected = &Error{Kind: ErrConflict, Msg: "You already have a live connection to this debate."}
	ErrDebateNotReady   = &Error{Kind: ErrConflict, Msg: "Debate cannot proceed until there are participants on both sides."}
	ErrClosed           = &Error{Kind: ErrConflict, Msg: "The server is shutting down."}

	ErrCreatorLeave = &Error{Kind: ErrForbidden, Msg: "The creator cannot leave the debate."}
	ErrNotCreator   = &Error{Kind: ErrForbidden, Msg: "Only the creator can delete this debate."}
	ErrNotConnected = &Error{Kind: ErrForbidden, Msg: "You are not connected to this debate."}
	ErrSideMismatch = &Error{Kind: ErrForbidden, Msg: "You can only speak for the side you joined."}
)
