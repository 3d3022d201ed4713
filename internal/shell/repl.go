package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// REPL is the interpreter loop: it reads one line at a time, parses and
// builds a command, executes it against the session, and repeats until
// exit, end of input, or cancellation.
type REPL struct {
	session *Session
	in      io.Reader
}

// NewREPL creates the loop over the given input stream.
func NewREPL(session *Session, in io.Reader) *REPL {
	return &REPL{session: session, in: in}
}

// Run drives the loop until the session exits, the input stream ends,
// or ctx is cancelled. The caller owns closing the storage connection.
func (r *REPL) Run(ctx context.Context) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(r.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	for {
		fmt.Fprint(r.session.out, r.session.Prompt())

		select {
		case <-ctx.Done():
			fmt.Fprintln(r.session.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(r.session.out)
				if err := <-scanErr; err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				return nil
			}
			r.session.Dispatch(ctx, line)
			if r.session.Done() {
				return nil
			}
		}
	}
}

// Dispatch runs one input line through parse, build and execute. Every
// failure is reported on the session output and leaves the session
// alive; only executed commands advance the command counter.
func (s *Session) Dispatch(ctx context.Context, line string) {
	if strings.TrimSpace(line) == "" {
		return
	}

	stmt, err := parse(line)
	if err != nil {
		s.printf("%v", err)
		return
	}
	if stmt == nil {
		return
	}

	cmd, err := build(stmt)
	if err != nil {
		s.printf("%v", err)
		return
	}

	if err := cmd.Execute(ctx, s); err != nil {
		s.printf("%s", renderError(err))
	}
	s.commands++
}
