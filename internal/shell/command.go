package shell

import "context"

// Command is one parsed, validated command. Execution runs against the
// session and returns a domain error from the taxonomy when the
// operation fails; mode violations are reported directly and are not
// errors.
type Command interface {
	Execute(ctx context.Context, s *Session) error
}
