// Package deckfile reads and writes deck lists as text, CSV and JSON.
package deckfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Entry is one parsed line of a deck list.
type Entry struct {
	Quantity int
	Name     string
}

// ParseResult holds the parsed entries and the lines that did not parse.
type ParseResult struct {
	Entries []Entry
	Errors  []string
}

// Deck list line: "4 Lightning Bolt" or "4x Lightning Bolt".
var lineRegex = regexp.MustCompile(`^(\d+)x?\s+(.+)$`)

// Parse reads a plain text deck list. Blank lines and // comments are
// skipped; unparseable lines are collected, not fatal.
func Parse(r io.Reader) (*ParseResult, error) {
	result := &ParseResult{}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		matches := lineRegex.FindStringSubmatch(line)
		if matches == nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: could not parse %q", lineNo, line))
			continue
		}

		qty, err := strconv.Atoi(matches[1])
		if err != nil || qty <= 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: invalid quantity %q", lineNo, matches[1]))
			continue
		}

		result.Entries = append(result.Entries, Entry{
			Quantity: qty,
			Name:     strings.TrimSpace(matches[2]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read deck list: %w", err)
	}

	return result, nil
}

// ParseFile parses the deck list at path.
func ParseFile(path string) (*ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open deck list: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Parse(f)
}
