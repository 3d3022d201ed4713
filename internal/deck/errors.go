package deck

import "errors"

// Domain errors. Every engine operation fails with one of these (wrapped
// with context) for expected outcomes; callers match with errors.Is and
// keep the session alive. Anything else is a storage or transport fault.
var (
	ErrDeckNotFound    = errors.New("deck not found")
	ErrDeckExists      = errors.New("deck already exists")
	ErrCardNotFound    = errors.New("card not found")
	ErrCardNotOnDeck   = errors.New("card not on deck")
	ErrCardIsCommander = errors.New("card is the commander")
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	ErrNoCommander     = errors.New("deck has no commander")
)
