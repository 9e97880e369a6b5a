package engine

import "errors"

// Lookup misses. The reducer leaves its state untouched and the caller logs a warning.
var ErrUnknownClient = errors.New("unknown client")
var ErrUnknownRoom = errors.New("unknown room")
var ErrUnknownMember = errors.New("unknown room member")
var ErrSlotNotFound = errors.New("attacking card not on battleground")

// ErrNotPermitted is returned by a gated intent that did not fire.
var ErrNotPermitted = errors.New("intent not permitted")
var ErrNoPickedCard = errors.New("no card picked")
var ErrNotInRoom = errors.New("not in a room")
