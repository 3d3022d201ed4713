package shell

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"list", []string{"list"}},
		{"add Sol Ring 2", []string{"add", "Sol", "Ring", "2"}},
		{`add "Sol Ring" 2`, []string{"add", "Sol Ring", "2"}},
		{`select "My Deck"`, []string{"select", "My Deck"}},
		{`find "Krenko, Mob Boss"`, []string{"find", "Krenko, Mob Boss"}},
	}
	for _, tt := range tests {
		got, err := tokenize(tt.in)
		if err != nil {
			t.Errorf("tokenize(%q) failed: %v", tt.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("tokenize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTokenizeUnterminatedQuote(t *testing.T) {
	if _, err := tokenize(`add "Sol Ring`); err == nil {
		t.Fatal("expected a syntax error for an unterminated quote")
	}
}

func TestParseAliases(t *testing.T) {
	tests := []struct {
		in      string
		keyword string
	}{
		{"cd Allies", kwSelect},
		{"mk Allies", kwCreate},
		{"mv Old New", kwRename},
		{"del Allies", kwDelete},
		{"cp A B", kwCopy},
		{"rmc Sol Ring", kwRemove},
		{"ls", kwList},
		{"cls", kwClear},
		{"top", kwTopCommanders},
		{"quit", kwExit},
		{"SELECT Allies", kwSelect}, // keywords are case-insensitive
	}
	for _, tt := range tests {
		stmt, err := parse(tt.in)
		if err != nil {
			t.Errorf("parse(%q) failed: %v", tt.in, err)
			continue
		}
		if stmt.keyword != tt.keyword {
			t.Errorf("parse(%q) keyword = %q, want %q", tt.in, stmt.keyword, tt.keyword)
		}
	}
}

func TestParseEmptyLine(t *testing.T) {
	stmt, err := parse("   ")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if stmt != nil {
		t.Fatalf("parse of blank line = %+v, want nil", stmt)
	}
}

func mustBuild(t *testing.T, line string) Command {
	t.Helper()
	stmt, err := parse(line)
	if err != nil {
		t.Fatalf("parse(%q) failed: %v", line, err)
	}
	cmd, err := build(stmt)
	if err != nil {
		t.Fatalf("build(%q) failed: %v", line, err)
	}
	return cmd
}

func TestBuildCardQuantity(t *testing.T) {
	tests := []struct {
		line string
		card string
		qty  int
	}{
		{"add Sol Ring", "Sol Ring", 1},
		{"add Sol Ring 3", "Sol Ring", 3},
		{`add "Sol Ring" 2`, "Sol Ring", 2},
		{"add Fury", "Fury", 1},
		// a lone trailing number with nothing before it is the card name
		{"add 2", "2", 1},
	}
	for _, tt := range tests {
		cmd, ok := mustBuild(t, tt.line).(*AddCmd)
		if !ok {
			t.Errorf("build(%q) is not an AddCmd", tt.line)
			continue
		}
		if cmd.Card != tt.card || cmd.Qty != tt.qty {
			t.Errorf("build(%q) = {%q %d}, want {%q %d}", tt.line, cmd.Card, cmd.Qty, tt.card, tt.qty)
		}
	}
}

func TestBuildVariants(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"select My Deck+1", &SelectCmd{Name: "My"}},
		{`select "My Deck+1"`, &SelectCmd{Name: "My Deck+1"}},
		{"create Allies", &CreateCmd{Name: "Allies"}},
		{`create Allies Tatyova`, &CreateCmd{Name: "Allies", Commander: "Tatyova"}},
		{"rename Old New", &RenameCmd{Old: "Old", New: "New"}},
		{"copy A B", &CopyCmd{Source: "A", Dest: "B"}},
		{"qty Sol Ring 4", &QtyCmd{Card: "Sol Ring", Qty: 4}},
		{"set-commander Tatyova", &SetCommanderCmd{Card: "Tatyova"}},
		{"reset-commander", &ResetCommanderCmd{}},
		{"commander", &CommanderCmd{}},
		{"list", &ListCmd{}},
		{"list 10", &ListCmd{Limit: 10}},
		{"find Sol Ring", &FindCmd{Card: "Sol Ring"}},
		{"search sol", &SearchCmd{Partial: "sol"}},
		{"stats", &StatsCmd{}},
		{"stats charts", &StatsCmd{Charts: true}},
		{"meta", &MetaCmd{Format: "commander"}},
		{"meta standard", &MetaCmd{Format: "standard"}},
		{"top-commanders", &TopCommandersCmd{}},
		{"clear", &ClearCmd{}},
		{"help", &HelpCmd{}},
		{"exit", &ExitCmd{}},
		{"frobnicate", &UnknownCmd{Keyword: "frobnicate"}},
	}
	for _, tt := range tests {
		got := mustBuild(t, tt.line)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("build(%q) = %#v, want %#v", tt.line, got, tt.want)
		}
	}
}

func TestBuildErrors(t *testing.T) {
	lines := []string{
		"select",
		"create",
		"rename OnlyOne",
		"qty Sol Ring",
		"qty Sol Ring many",
		"list ten",
		"add",
		"find",
		"stats everything",
		"export_txt",
		"import_txt only-path.txt",
	}
	for _, line := range lines {
		stmt, err := parse(line)
		if err != nil {
			t.Fatalf("parse(%q) failed: %v", line, err)
		}
		if _, err := build(stmt); err == nil {
			t.Errorf("build(%q) succeeded, want an error", line)
		}
	}
}

func TestBuildExportPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.txt")

	cmd := mustBuild(t, "export_txt "+path)
	exp, ok := cmd.(*ExportCmd)
	if !ok {
		t.Fatalf("build returned %#v, want *ExportCmd", cmd)
	}
	if exp.Path != path {
		t.Errorf("path = %q, want %q", exp.Path, path)
	}

	// the parent directory must exist at build time
	stmt, _ := parse("export_csv /no/such/dir/deck.csv")
	if _, err := build(stmt); err == nil {
		t.Error("export into a missing directory built successfully")
	}
}

func TestBuildImportPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list.txt")
	if err := os.WriteFile(path, []byte("1 Sol Ring\n"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	cmd := mustBuild(t, "import_txt "+path+" Allies")
	imp, ok := cmd.(*ImportCmd)
	if !ok {
		t.Fatalf("build returned %#v, want *ImportCmd", cmd)
	}
	if imp.Deck != "Allies" || imp.Path != path {
		t.Errorf("built %+v", imp)
	}

	stmt, _ := parse("import_txt " + filepath.Join(dir, "missing.txt") + " Allies")
	if _, err := build(stmt); err == nil {
		t.Error("import of a missing file built successfully")
	}

	var syntaxErr *SyntaxError
	stmt, _ = parse("import_txt " + path + " \";;;\"")
	if _, err := build(stmt); !errors.As(err, &syntaxErr) {
		t.Errorf("import with unsanitizable deck name = %v, want a syntax error", err)
	}
}
