package fonts

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func TestBinaryReader_Bounds(t *testing.T) {
	r := newBinaryReader([]byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x02})

	v16, err := r.Uint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(1), v16)

	v32, err := r.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), v32)

	_, err = r.Uint16()
	assert.ErrorIs(t, err, errOutOfBounds)

	assert.ErrorIs(t, r.Seek(7), errOutOfBounds)
	assert.ErrorIs(t, r.Seek(-1), errOutOfBounds)
	require.NoError(t, r.Seek(4))
	_, err = r.Bytes(3)
	assert.ErrorIs(t, err, errOutOfBounds)
}

func TestParseNameTable_Precedence(t *testing.T) {
	tests := []struct {
		name    string
		records []nameRecord
		want    string
	}{
		{
			name: "windows wins over earlier mac",
			records: []nameRecord{
				{platformMac, nameIDFamily, "Mac Name"},
				{platformWindows, nameIDFamily, "思源黑体"},
			},
			want: "思源黑体",
		},
		{
			name: "first windows record returns immediately",
			records: []nameRecord{
				{platformWindows, nameIDFamily, "Windows Name"},
				{platformMac, nameIDFamily, "Mac Name"},
			},
			want: "Windows Name",
		},
		{
			name: "mac only",
			records: []nameRecord{
				{platformMac, 2, "Regular"},
				{platformMac, nameIDFamily, "Café Sans"},
			},
			want: "Café Sans",
		},
		{
			name: "first mac record is kept",
			records: []nameRecord{
				{platformMac, nameIDFamily, "First"},
				{platformMac, nameIDFamily, "Second"},
			},
			want: "First",
		},
		{
			name:    "no family record",
			records: []nameRecord{{platformWindows, 4, "Full Name"}},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseNameTable(buildNameTable(tt.records))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNameTable_Truncated(t *testing.T) {
	_, err := parseNameTable([]byte{0x00})
	assert.ErrorIs(t, err, errOutOfBounds)

	// count claims more records than the table holds: parse what fits
	table := buildNameTable([]nameRecord{{platformMac, nameIDFamily, "Kept"}})
	binary.BigEndian.PutUint16(table[2:], 50)
	got, err := parseNameTable(table)
	require.NoError(t, err)
	assert.Equal(t, "Kept", got)

	// table ends inside the second record
	table = buildNameTable([]nameRecord{
		{platformMac, nameIDFamily, "First"},
		{platformWindows, nameIDFamily, "Second"},
	})
	got, err = parseNameTable(table[:6+12+7])
	require.NoError(t, err)
	assert.Empty(t, got, "first record's string lies past the cut")

	got, err = parseNameTable(table[:len(table)-1])
	require.NoError(t, err)
	assert.Equal(t, "First", got, "windows string is cut, mac record stays")
}

func TestReadNameEntry(t *testing.T) {
	table := buildNameTable([]nameRecord{{platformWindows, nameIDFamily, "Ab"}})

	e, err := readNameEntry(newBinaryReader(table), 6)
	require.NoError(t, err)
	assert.Equal(t, nameEntry{platformID: platformWindows, nameID: nameIDFamily, length: 4, offset: 0}, e)

	_, err = readNameEntry(newBinaryReader(table[:6+11]), 6)
	assert.ErrorIs(t, err, errOutOfBounds)

	_, err = readNameEntry(newBinaryReader(table), len(table)+1)
	assert.Error(t, err)
}

func TestReadFaceFamilyName_TableCap(t *testing.T) {
	// the Windows record sits past the read cap, so the Mac one survives
	mac := []byte("Visible")
	win := encodeName(nameRecord{platformWindows, nameIDFamily, "Hidden"})
	const gapOffset = 65530

	var table bytes.Buffer
	w := func(v uint16) { _ = binary.Write(&table, binary.BigEndian, v) }
	w(0)
	w(2)
	w(6 + 24)
	w(platformMac)
	w(0)
	w(0)
	w(nameIDFamily)
	w(uint16(len(mac)))
	w(0)
	w(platformWindows)
	w(1)
	w(0x409)
	w(nameIDFamily)
	w(uint16(len(win)))
	w(gapOffset)
	table.Write(mac)
	table.Write(make([]byte, gapOffset-len(mac)))
	table.Write(win)
	require.Greater(t, table.Len(), maxNameTableBytes)

	var file bytes.Buffer
	_ = binary.Write(&file, binary.BigEndian, uint32(0x00010000))
	_ = binary.Write(&file, binary.BigEndian, uint16(1))
	file.Write(make([]byte, 6))
	file.WriteString("name")
	_ = binary.Write(&file, binary.BigEndian, uint32(0))
	_ = binary.Write(&file, binary.BigEndian, uint32(28))
	_ = binary.Write(&file, binary.BigEndian, uint32(table.Len()))
	file.Write(table.Bytes())

	name, err := readFaceFamilyName(bytes.NewReader(file.Bytes()), 0)
	require.NoError(t, err)
	assert.Equal(t, "Visible", name)
}

func TestReadFamilyNames(t *testing.T) {
	dir := t.TempDir()

	t.Run("real font", func(t *testing.T) {
		path := filepath.Join(dir, "Go-Regular.ttf")
		require.NoError(t, os.WriteFile(path, goregular.TTF, 0o644))

		names, err := readFamilyNames(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"Go"}, names)
	})

	t.Run("collection is capped and deduplicated", func(t *testing.T) {
		families := make([]string, 0, 25)
		for i := 0; i < 25; i++ {
			families = append(families, string(rune('A'+i))+" Family")
		}
		families[1] = families[0]

		path := filepath.Join(dir, "bundle.ttc")
		require.NoError(t, os.WriteFile(path, buildCollection(families), 0o644))

		names, err := readFamilyNames(path)
		require.NoError(t, err)
		assert.Len(t, names, maxCollectionFaces-1)
		assert.Equal(t, "A Family", names[0])
		assert.NotContains(t, names, "U Family")
	})

	t.Run("garbage", func(t *testing.T) {
		path := filepath.Join(dir, "broken.ttf")
		require.NoError(t, os.WriteFile(path, []byte{0x00, 0x01}, 0o644))

		_, err := readFamilyNames(path)
		assert.Error(t, err)
	})
}
