// Package shell implements the interactive deck-building interpreter:
// the command grammar and parser, the command variants, the session
// context with its mode state machine, and the REPL loop.
package shell

import (
	"fmt"
	"strings"
	"unicode"
)

// Keywords of the command grammar. The leading token of a line selects
// exactly one production; aliases resolve to the same keyword.
const (
	kwSelect         = "select"
	kwCreate         = "create"
	kwRename         = "rename"
	kwDelete         = "delete"
	kwCopy           = "copy"
	kwAdd            = "add"
	kwRemove         = "remove"
	kwQty            = "qty"
	kwSetCommander   = "set-commander"
	kwResetCommander = "reset-commander"
	kwCommander      = "commander"
	kwList           = "list"
	kwFind           = "find"
	kwSearch         = "search"
	kwImportTxt      = "import_txt"
	kwExportTxt      = "export_txt"
	kwExportCsv      = "export_csv"
	kwExportJSON     = "export_json"
	kwStats          = "stats"
	kwBackup         = "backup"
	kwMeta           = "meta"
	kwTopCommanders  = "top-commanders"
	kwClear          = "clear"
	kwHelp           = "help"
	kwExit           = "exit"
)

// aliases kept from the original command surface.
var aliases = map[string]string{
	"cd":   kwSelect,
	"mk":   kwCreate,
	"mv":   kwRename,
	"del":  kwDelete,
	"cp":   kwCopy,
	"rmc":  kwRemove,
	"ls":   kwList,
	"cls":  kwClear,
	"top":  kwTopCommanders,
	"quit": kwExit,
}

// statement is the parse tree for one input line: the resolved keyword
// and its positional argument tokens.
type statement struct {
	keyword string
	args    []string
	raw     string
}

// SyntaxError reports a line that does not conform to the grammar.
type SyntaxError struct {
	Line   string
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s", e.Reason)
}

// tokenize splits a line into whitespace-separated tokens. A run
// enclosed in double quotes forms a single token, so card names with
// spaces can be written either quoted or bare.
func tokenize(line string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inQuote := false

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range line {
		switch {
		case r == '"':
			if inQuote {
				tokens = append(tokens, current.String())
				current.Reset()
				inQuote = false
			} else {
				flush()
				inQuote = true
			}
		case unicode.IsSpace(r) && !inQuote:
			flush()
		default:
			current.WriteRune(r)
		}
	}

	if inQuote {
		return nil, &SyntaxError{Line: line, Reason: "unterminated quote"}
	}
	flush()

	return tokens, nil
}

// parse turns one input line into a statement. The keyword is
// lowercased and alias-resolved; unknown keywords are passed through so
// the builder can produce the Unknown variant instead of failing.
func parse(line string) (*statement, error) {
	tokens, err := tokenize(line)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	keyword := strings.ToLower(tokens[0])
	if canonical, ok := aliases[keyword]; ok {
		keyword = canonical
	}

	return &statement{
		keyword: keyword,
		args:    tokens[1:],
		raw:     line,
	}, nil
}
