package catalog

import (
	"path/filepath"
	"strings"

	"github.com/chanilino/romscrape/pkg/romlist"
)

// Row derives the romlist entry for a record. Name is the ROM filename
// without its extension; only the first nine columns are ever populated.
func (r *Record) Row() romlist.Row {
	return romlist.Row{
		Name:         strings.TrimSuffix(r.FileName, filepath.Ext(r.FileName)),
		Title:        r.Name,
		Emulator:     r.Emulator,
		CloneOf:      r.CloneOf,
		Year:         r.ReleaseDate,
		Manufacturer: r.Developer,
		Category:     strings.Join(r.Genres, ", "),
		Players:      r.Players,
		Rotation:     r.Rotation,
	}
}

// RomlistFile returns the per-system catalog filename for this record.
func (r *Record) RomlistFile() string {
	return r.System + ".txt"
}
