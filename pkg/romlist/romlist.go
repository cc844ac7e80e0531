// Package romlist reads and writes Attract-Mode romlist files: one
// semicolon-delimited line per ROM, 17 fixed fields, a '#'-prefixed header.
// Embedded semicolons in field values are not escaped; this is a known
// limitation of the format.
package romlist

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	pkgerrors "github.com/chanilino/romscrape/pkg/errors"
)

// FieldCount is the fixed number of fields per row.
const FieldCount = 17

// Header is the comment line written at the top of a fresh romlist.
const Header = "#Name;Title;Emulator;CloneOf;Year;Manufacturer;Category;Players;Rotation;Control;Status;DisplayCount;DisplayType;AltRomname;AltTitle;Extra;Buttons"

// Row is one romlist entry. Name is the ROM filename without its extension;
// the remaining fields describe the game.
type Row struct {
	Name         string
	Title        string
	Emulator     string
	CloneOf      string
	Year         string
	Manufacturer string
	Category     string
	Players      string
	Rotation     string
	Control      string
	Status       string
	DisplayCount string
	DisplayType  string
	AltRomname   string
	AltTitle     string
	Extra        string
	Buttons      string
}

func (r Row) fields() [FieldCount]string {
	return [FieldCount]string{
		r.Name, r.Title, r.Emulator, r.CloneOf, r.Year, r.Manufacturer,
		r.Category, r.Players, r.Rotation, r.Control, r.Status,
		r.DisplayCount, r.DisplayType, r.AltRomname, r.AltTitle, r.Extra,
		r.Buttons,
	}
}

// Format renders the row as a single romlist line: 17 fields, 16 semicolons,
// regardless of how many fields are empty.
func (r Row) Format() string {
	f := r.fields()
	return strings.Join(f[:], ";")
}

// ParseRow parses one non-comment romlist line.
func ParseRow(line string) (Row, error) {
	parts := strings.Split(line, ";")
	if len(parts) < FieldCount {
		return Row{}, pkgerrors.Wrapf(pkgerrors.ErrRomlistParse,
			"expected %d fields, got %d: %q", FieldCount, len(parts), line)
	}
	return Row{
		Name: parts[0], Title: parts[1], Emulator: parts[2], CloneOf: parts[3],
		Year: parts[4], Manufacturer: parts[5], Category: parts[6],
		Players: parts[7], Rotation: parts[8], Control: parts[9],
		Status: parts[10], DisplayCount: parts[11], DisplayType: parts[12],
		AltRomname: parts[13], AltTitle: parts[14], Extra: parts[15],
		Buttons: parts[16],
	}, nil
}

// Parse reads a whole romlist, skipping the header and blank lines.
func Parse(r io.Reader) ([]Row, error) {
	var rows []Row
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		row, err := ParseRow(line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read romlist")
	}
	return rows, nil
}

// Merge unions two romlists by Name. Rows from a keep their order and win
// conflicts; rows unique to b are appended in their original order.
func Merge(a, b []Row) []Row {
	merged := make([]Row, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a))
	for _, row := range a {
		merged = append(merged, row)
		seen[row.Name] = true
	}
	for _, row := range b {
		if seen[row.Name] {
			continue
		}
		merged = append(merged, row)
		seen[row.Name] = true
	}
	return merged
}

// Write emits a full romlist with header.
func Write(w io.Writer, rows []Row) error {
	if _, err := fmt.Fprintln(w, Header); err != nil {
		return pkgerrors.Wrap(err, "failed to write romlist header")
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, row.Format()); err != nil {
			return pkgerrors.Wrap(err, "failed to write romlist row")
		}
	}
	return nil
}
