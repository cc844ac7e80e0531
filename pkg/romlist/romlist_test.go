package romlist

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowFormat_FieldCountInvariant(t *testing.T) {
	tests := []struct {
		name string
		row  Row
	}{
		{name: "empty row", row: Row{}},
		{name: "partially populated", row: Row{Name: "sonic", Title: "Sonic The Hedgehog", Emulator: "genesis-plus-gx"}},
		{
			name: "fully populated scrape row",
			row: Row{
				Name: "sonic", Title: "Sonic The Hedgehog", Emulator: "genesis-plus-gx",
				CloneOf: "", Year: "1991", Manufacturer: "SEGA",
				Category: "Platform", Players: "1", Rotation: "0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := tt.row.Format()
			// 17 fields, 16 semicolons, always.
			assert.Equal(t, FieldCount-1, strings.Count(line, ";"))
			assert.Len(t, strings.Split(line, ";"), FieldCount)
		})
	}
}

func TestParseRow_RoundTrip(t *testing.T) {
	row := Row{
		Name: "sonic", Title: "Sonic The Hedgehog", Emulator: "genesis-plus-gx",
		Year: "1991", Manufacturer: "SEGA", Category: "Platform", Players: "1",
	}

	parsed, err := ParseRow(row.Format())
	require.NoError(t, err)
	assert.Equal(t, row, parsed)
}

func TestParseRow_TooFewFields(t *testing.T) {
	_, err := ParseRow("just;three;fields")
	require.Error(t, err)
}

func TestParse(t *testing.T) {
	input := Header + "\n" +
		"sonic;Sonic The Hedgehog;genesis-plus-gx;;1991;SEGA;Platform;1;0;;;;;;;;\n" +
		"\n" +
		"streets;Streets of Rage;genesis-plus-gx;;1991;SEGA;Beat'em up;2;0;;;;;;;;\n"

	rows, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "sonic", rows[0].Name)
	assert.Equal(t, "Streets of Rage", rows[1].Title)
}

func TestMerge(t *testing.T) {
	a := []Row{
		{Name: "sonic", Title: "Sonic The Hedgehog", Year: "1991"},
		{Name: "streets", Title: "Streets of Rage"},
	}
	b := []Row{
		{Name: "sonic", Title: "Sonic (dup, should lose)"},
		{Name: "columns", Title: "Columns"},
	}

	merged := Merge(a, b)
	require.Len(t, merged, 3)
	assert.Equal(t, "sonic", merged[0].Name)
	assert.Equal(t, "Sonic The Hedgehog", merged[0].Title) // first list wins
	assert.Equal(t, "streets", merged[1].Name)
	assert.Equal(t, "columns", merged[2].Name)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	rows := []Row{{Name: "sonic", Title: "Sonic The Hedgehog"}}

	require.NoError(t, Write(&buf, rows))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, Header, lines[0])

	parsed, err := Parse(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, rows, parsed)
}
