package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/edhtools/deckforge/internal/deck"
	"github.com/edhtools/deckforge/internal/deckfile"
)

// build maps a statement to exactly one Command variant, validating
// argument shape only. Existence and domain checks are deferred to
// execution; the single exception is the filesystem checks the grammar
// requires for import/export paths.
func build(stmt *statement) (Command, error) {
	switch stmt.keyword {
	case kwSelect:
		name, err := deckNameArg(stmt, 0)
		if err != nil {
			return nil, err
		}
		return &SelectCmd{Name: name}, nil

	case kwCreate:
		name, err := deckNameArg(stmt, 0)
		if err != nil {
			return nil, err
		}
		commander := strings.Join(stmt.args[1:], " ")
		return &CreateCmd{Name: name, Commander: commander}, nil

	case kwRename:
		old, err := deckNameArg(stmt, 0)
		if err != nil {
			return nil, err
		}
		next, err := deckNameArg(stmt, 1)
		if err != nil {
			return nil, err
		}
		return &RenameCmd{Old: old, New: next}, nil

	case kwDelete:
		name, err := deckNameArg(stmt, 0)
		if err != nil {
			return nil, err
		}
		return &DeleteCmd{Name: name}, nil

	case kwCopy:
		source, err := deckNameArg(stmt, 0)
		if err != nil {
			return nil, err
		}
		dest, err := deckNameArg(stmt, 1)
		if err != nil {
			return nil, err
		}
		return &CopyCmd{Source: source, Dest: dest}, nil

	case kwAdd:
		name, qty, err := cardQtyArgs(stmt)
		if err != nil {
			return nil, err
		}
		return &AddCmd{Card: name, Qty: qty}, nil

	case kwRemove:
		name, qty, err := cardQtyArgs(stmt)
		if err != nil {
			return nil, err
		}
		return &RemoveCmd{Card: name, Qty: qty}, nil

	case kwQty:
		if len(stmt.args) < 2 {
			return nil, &SyntaxError{Line: stmt.raw, Reason: "qty requires a card name and a quantity"}
		}
		last := stmt.args[len(stmt.args)-1]
		n, err := strconv.Atoi(last)
		if err != nil {
			return nil, &SyntaxError{Line: stmt.raw, Reason: fmt.Sprintf("quantity %q is not an integer", last)}
		}
		name := strings.Join(stmt.args[:len(stmt.args)-1], " ")
		return &QtyCmd{Card: name, Qty: n}, nil

	case kwSetCommander:
		name, err := cardNameArg(stmt)
		if err != nil {
			return nil, err
		}
		return &SetCommanderCmd{Card: name}, nil

	case kwResetCommander:
		return &ResetCommanderCmd{}, nil

	case kwCommander:
		return &CommanderCmd{}, nil

	case kwList:
		limit := 0
		if len(stmt.args) > 0 {
			n, err := strconv.Atoi(stmt.args[0])
			if err != nil {
				return nil, &SyntaxError{Line: stmt.raw, Reason: fmt.Sprintf("limit %q is not an integer", stmt.args[0])}
			}
			limit = n
		}
		return &ListCmd{Limit: limit}, nil

	case kwFind:
		name, err := cardNameArg(stmt)
		if err != nil {
			return nil, err
		}
		return &FindCmd{Card: name}, nil

	case kwSearch:
		name, err := cardNameArg(stmt)
		if err != nil {
			return nil, err
		}
		return &SearchCmd{Partial: name}, nil

	case kwImportTxt:
		if len(stmt.args) != 2 {
			return nil, &SyntaxError{Line: stmt.raw, Reason: "import_txt requires a path and a deck name"}
		}
		path := stmt.args[0]
		if err := checkImportPath(path); err != nil {
			return nil, err
		}
		name := deck.SanitizeName(stmt.args[1])
		if name == "" {
			return nil, &SyntaxError{Line: stmt.raw, Reason: "invalid deck name"}
		}
		return &ImportCmd{Path: path, Deck: name}, nil

	case kwExportTxt, kwExportCsv, kwExportJSON:
		if len(stmt.args) != 1 {
			return nil, &SyntaxError{Line: stmt.raw, Reason: stmt.keyword + " requires a path"}
		}
		path := stmt.args[0]
		if err := checkExportPath(path); err != nil {
			return nil, err
		}
		format := deckfile.FormatTxt
		switch stmt.keyword {
		case kwExportCsv:
			format = deckfile.FormatCSV
		case kwExportJSON:
			format = deckfile.FormatJSON
		}
		return &ExportCmd{Format: format, Path: path}, nil

	case kwStats:
		charts := false
		if len(stmt.args) > 0 {
			if strings.ToLower(stmt.args[0]) != "charts" {
				return nil, &SyntaxError{Line: stmt.raw, Reason: "stats takes no argument or \"charts\""}
			}
			charts = true
		}
		return &StatsCmd{Charts: charts}, nil

	case kwBackup:
		dir := ""
		if len(stmt.args) > 0 {
			dir = stmt.args[0]
		}
		return &BackupCmd{Dir: dir}, nil

	case kwMeta:
		format := "commander"
		if len(stmt.args) > 0 {
			format = strings.ToLower(stmt.args[0])
		}
		return &MetaCmd{Format: format}, nil

	case kwTopCommanders:
		return &TopCommandersCmd{}, nil

	case kwClear:
		return &ClearCmd{}, nil

	case kwHelp:
		return &HelpCmd{}, nil

	case kwExit:
		return &ExitCmd{}, nil

	default:
		return &UnknownCmd{Keyword: stmt.keyword}, nil
	}
}

// deckNameArg returns the sanitized deck name at position i.
func deckNameArg(stmt *statement, i int) (string, error) {
	if len(stmt.args) <= i {
		return "", &SyntaxError{Line: stmt.raw, Reason: stmt.keyword + " requires a deck name"}
	}
	name := deck.SanitizeName(stmt.args[i])
	if name == "" {
		return "", &SyntaxError{Line: stmt.raw, Reason: fmt.Sprintf("invalid deck name %q", stmt.args[i])}
	}
	return name, nil
}

// cardNameArg joins every argument token into one card name.
func cardNameArg(stmt *statement) (string, error) {
	if len(stmt.args) == 0 {
		return "", &SyntaxError{Line: stmt.raw, Reason: stmt.keyword + " requires a card name"}
	}
	return strings.Join(stmt.args, " "), nil
}

// cardQtyArgs handles the add/remove shape: every token is part of the
// card name except a trailing integer, which is the quantity. The
// quantity defaults to 1 when omitted.
func cardQtyArgs(stmt *statement) (string, int, error) {
	if len(stmt.args) == 0 {
		return "", 0, &SyntaxError{Line: stmt.raw, Reason: stmt.keyword + " requires a card name"}
	}
	qty := 1
	nameTokens := stmt.args
	if len(stmt.args) >= 2 {
		if n, err := strconv.Atoi(stmt.args[len(stmt.args)-1]); err == nil {
			qty = n
			nameTokens = stmt.args[:len(stmt.args)-1]
		}
	}
	return strings.Join(nameTokens, " "), qty, nil
}

func checkImportPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".txt") {
		return fmt.Errorf("%s is not a .txt file", path)
	}
	return nil
}

func checkExportPath(path string) error {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("directory %s does not exist", dir)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
