package errors

import "errors"

// Domain sentinel errors raised by services. The HTTP layer turns them into
// status codes via Map; the websocket layer turns them into error frames.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrMatchNotFound     = errors.New("match not found")
	ErrNotApproved       = errors.New("account is awaiting approval")
	ErrSuspended         = errors.New("account is suspended")
	ErrSelfSwipe         = errors.New("cannot swipe on yourself")
	ErrNotParticipant    = errors.New("not a participant of this match")
	ErrBlocked           = errors.New("interaction not allowed")
	ErrEmailTaken        = errors.New("email already registered")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrBadCredentials    = errors.New("invalid email or password")
	ErrEmptyMessage      = errors.New("message content must not be empty")
)

// InvalidArgument wraps a message as a validation error so Map classifies it
// as a client error.
func InvalidArgument(msg string) error {
	return &wrapped{sentinel: ErrInvalidArgument, msg: msg}
}

// Forbidden wraps a message as an authorization error.
func Forbidden(msg string) error {
	return &wrapped{sentinel: ErrForbidden, msg: msg}
}

type wrapped struct {
	sentinel error
	msg      string
}

func (w *wrapped) Error() string { return w.msg }
func (w *wrapped) Unwrap() error { return w.sentinel }
